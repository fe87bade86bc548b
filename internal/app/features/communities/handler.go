// internal/app/features/communities/handler.go
package communities

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/commonshub/internal/app/features/errors"
	"github.com/dalemusser/commonshub/internal/app/features/shared"
	communitystore "github.com/dalemusser/commonshub/internal/app/store/communities"
	"github.com/dalemusser/commonshub/internal/app/store/queries/communitymembers"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/commonshub/internal/app/system/inputval"
	"github.com/dalemusser/commonshub/internal/app/system/membership"
	"github.com/dalemusser/commonshub/internal/app/system/timeouts"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB          *mongo.Database
	Log         *zap.Logger
	Ledger      *membership.Ledger
	Communities *communitystore.Store
}

func NewHandler(db *mongo.Database, ledger *membership.Ledger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:          db,
		Log:         logger,
		Ledger:      ledger,
		Communities: communitystore.New(db),
	}
}

type createInput struct {
	Name        string `json:"name" validate:"required,max=100" label:"Name"`
	Description string `json:"description" validate:"max=2000" label:"Description"`
}

// communityView is the detail response: the community plus the joined
// member identities from the ledger.
type communityView struct {
	models.Community
	MemberDetails []communitymembers.Member `json:"member_details"`
}

// HandleCreate creates a community owned by the signed-in user.
// POST /api/communities
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	var in createInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in.Name = htmlsanitize.PlainText(strings.TrimSpace(in.Name))
	in.Description = htmlsanitize.Sanitize(strings.TrimSpace(in.Description))
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	c, err := h.Ledger.CreateCommunityWithOwner(ctx, in.Name, in.Description, userID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusCreated, c)
}

// ServeList returns all communities, newest first.
// GET /api/communities
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Communities.List(ctx)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Community{}
	}
	shared.JSON(w, http.StatusOK, list)
}

// ServeView returns one community with member identities.
// GET /api/communities/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Communities.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	members, err := communitymembers.ListActiveMembers(ctx, h.DB, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if members == nil {
		members = []communitymembers.Member{}
	}
	shared.JSON(w, http.StatusOK, communityView{Community: c, MemberDetails: members})
}

// HandleJoin adds the signed-in user as a member.
// POST /api/communities/{id}/join
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Ledger.Join(ctx, id, userID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, m)
}

// HandleLeave removes the signed-in user's membership.
// POST /api/communities/{id}/leave
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Ledger.Leave(ctx, id, userID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"message": "Left community."})
}

// HandleReconcile recomputes the denormalized member list from the
// ledger. Admin-only.
// POST /api/communities/{id}/reconcile
func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.requireRole(w, r, id, authz.RoleAdmin) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Ledger.Reconcile(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if members == nil {
		members = []primitive.ObjectID{}
	}
	shared.JSON(w, http.StatusOK, map[string]any{"members": members})
}

// HandleDelete removes the community and its memberships. Admin-only.
// DELETE /api/communities/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !h.requireRole(w, r, id, authz.RoleAdmin) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Ledger.DeleteCommunity(ctx, id); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"message": "Community deleted."})
}

// requireRole checks the signed-in user holds at least minRole in the
// community and writes the error response itself when they do not.
func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, communityID primitive.ObjectID, minRole string) bool {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role, err := h.Ledger.RoleOf(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, membership.ErrNoMembership) {
			apierrors.Write(w, r, h.Log, authz.ErrInsufficientRole)
			return false
		}
		apierrors.Write(w, r, h.Log, err)
		return false
	}
	if !authz.RoleAtLeast(role, minRole) {
		apierrors.Write(w, r, h.Log, authz.ErrInsufficientRole)
		return false
	}
	return true
}

// pathID parses the {id} route parameter, writing a 404 for malformed
// IDs so they are indistinguishable from missing documents.
func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteMessage(w, http.StatusNotFound, "Community not found.")
		return primitive.NilObjectID, false
	}
	return id, true
}
