// internal/app/features/events/handler.go
package events

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/dalemusser/commonshub/internal/app/features/errors"
	"github.com/dalemusser/commonshub/internal/app/features/shared"
	"github.com/dalemusser/commonshub/internal/app/policy/eventpolicy"
	eventstore "github.com/dalemusser/commonshub/internal/app/store/events"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/commonshub/internal/app/system/inputval"
	"github.com/dalemusser/commonshub/internal/app/system/membership"
	"github.com/dalemusser/commonshub/internal/app/system/payments"
	"github.com/dalemusser/commonshub/internal/app/system/timeouts"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Events     *eventstore.Store
	Ledger     *membership.Ledger
	Reconciler *payments.Reconciler
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, ledger *membership.Ledger, rec *payments.Reconciler, logger *zap.Logger) *Handler {
	return &Handler{
		Events:     eventstore.New(db),
		Ledger:     ledger,
		Reconciler: rec,
		Log:        logger,
	}
}

type eventInput struct {
	Title       string    `json:"title" validate:"required,max=200" label:"Title"`
	Description string    `json:"description" validate:"max=5000" label:"Description"`
	Date        time.Time `json:"date" validate:"required" label:"Date"`
	Location    string    `json:"location" validate:"max=300" label:"Location"`
	Price       int64     `json:"price" validate:"gte=0" label:"Price"`
	CommunityID string    `json:"community_id" validate:"required" label:"Community"`
}

func (in *eventInput) clean() {
	in.Title = htmlsanitize.PlainText(strings.TrimSpace(in.Title))
	in.Description = htmlsanitize.Sanitize(strings.TrimSpace(in.Description))
	in.Location = htmlsanitize.PlainText(strings.TrimSpace(in.Location))
}

// HandleCreate creates an event in a community the user belongs to.
// POST /api/events
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	var in eventInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in.clean()
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}
	communityID, err := primitive.ObjectIDFromHex(in.CommunityID)
	if err != nil {
		apierrors.WriteMessage(w, http.StatusNotFound, "Community not found.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// Only members create events in a community.
	if _, err := h.Ledger.RoleOf(ctx, communityID, userID); err != nil {
		if errors.Is(err, membership.ErrNoMembership) {
			err = authz.ErrForbidden
		}
		apierrors.Write(w, r, h.Log, err)
		return
	}

	e, err := h.Events.Create(ctx, eventstore.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Price:       in.Price,
		CreatedBy:   userID,
		CommunityID: communityID,
	})
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusCreated, e)
}

// ServeList returns events, optionally filtered by ?community=<id>.
// GET /api/events
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	var communityID *primitive.ObjectID
	if q := r.URL.Query().Get("community"); q != "" {
		id, err := primitive.ObjectIDFromHex(q)
		if err != nil {
			apierrors.WriteMessage(w, http.StatusNotFound, "Community not found.")
			return
		}
		communityID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Events.List(ctx, communityID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	shared.JSON(w, http.StatusOK, list)
}

// ServeView returns one event.
// GET /api/events/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, e)
}

// HandleUpdate overwrites an event's mutable fields. Only the creator
// may do this.
// PUT /api/events/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	var in eventInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in.clean()
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if err := eventpolicy.CanModify(e, userID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	updated, err := h.Events.UpdateInfo(ctx, id, in.Title, in.Description, in.Location, in.Date, in.Price)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, updated)
}

// HandleDelete removes an event. Same authorization as update.
// DELETE /api/events/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if err := eventpolicy.CanModify(e, userID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	if _, err := h.Events.Delete(ctx, id); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"message": "Event deleted."})
}

// ServeAccess reports whether the signed-in user may attend the event.
// Free events are open; priced events require a completed payment and
// answer 402 until one exists.
// GET /api/events/{id}/access
func (h *Handler) ServeAccess(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if err := eventpolicy.CanAttend(ctx, h.Reconciler, e, userID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]bool{"allowed": true})
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteMessage(w, http.StatusNotFound, "Event not found.")
		return primitive.NilObjectID, false
	}
	return id, true
}
