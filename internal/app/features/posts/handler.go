// internal/app/features/posts/handler.go
package posts

import (
	"context"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/dalemusser/commonshub/internal/app/features/errors"
	"github.com/dalemusser/commonshub/internal/app/features/shared"
	"github.com/dalemusser/commonshub/internal/app/policy/postpolicy"
	poststore "github.com/dalemusser/commonshub/internal/app/store/posts"
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
	Posts  *poststore.Store
	Ledger *membership.Ledger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, ledger *membership.Ledger, logger *zap.Logger) *Handler {
	return &Handler{
		Posts:  poststore.New(db),
		Ledger: ledger,
		Log:    logger,
	}
}

type createInput struct {
	CommunityID string   `json:"community_id" validate:"required" label:"Community"`
	Content     string   `json:"content" validate:"required,max=10000" label:"Content"`
	Media       []string `json:"media" validate:"max=10,dive,max=2000" label:"Media"`
}

type commentInput struct {
	Text string `json:"text" validate:"required,max=2000" label:"Comment"`
}

// HandleCreate creates a post in a community the user belongs to.
// POST /api/posts
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
	in.Content = htmlsanitize.Sanitize(strings.TrimSpace(in.Content))
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

	if err := postpolicy.CanPost(ctx, h.Ledger, communityID, userID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	p, err := h.Posts.Create(ctx, communityID, userID, in.Content, in.Media)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusCreated, p)
}

// ServeListByCommunity returns a community's posts, newest first.
// GET /api/posts?community=<id>
func (h *Handler) ServeListByCommunity(w http.ResponseWriter, r *http.Request) {
	communityID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("community"))
	if err != nil {
		apierrors.WriteMessage(w, http.StatusNotFound, "Community not found.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Posts.ListByCommunity(ctx, communityID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Post{}
	}
	shared.JSON(w, http.StatusOK, list)
}

// HandleLike adds the user to the post's like set (idempotent).
// POST /api/posts/{id}/like
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, h.Posts.Like)
}

// HandleUnlike removes the user from the post's like set.
// POST /api/posts/{id}/unlike
func (h *Handler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.toggleLike(w, r, h.Posts.Unlike)
}

func (h *Handler) toggleLike(w http.ResponseWriter, r *http.Request, op func(context.Context, primitive.ObjectID, primitive.ObjectID) (models.Post, error)) {
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

	p, err := op(ctx, id, userID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, p)
}

// HandleComment appends a comment to the post.
// POST /api/posts/{id}/comment
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	var in commentInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in.Text = htmlsanitize.Sanitize(strings.TrimSpace(in.Text))
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Posts.AddComment(ctx, id, models.Comment{
		UserID:    userID,
		Text:      in.Text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, p)
}

// HandleDelete removes a post. Only the author may do this.
// DELETE /api/posts/{id}
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

	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if err := postpolicy.CanModify(p, userID); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	if _, err := h.Posts.Delete(ctx, id); err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, map[string]string{"message": "Post deleted."})
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteMessage(w, http.StatusNotFound, "Post not found.")
		return primitive.NilObjectID, false
	}
	return id, true
}
