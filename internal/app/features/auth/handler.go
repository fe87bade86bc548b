// internal/app/features/auth/handler.go
package auth

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/commonshub/internal/app/features/errors"
	"github.com/dalemusser/commonshub/internal/app/features/shared"
	"github.com/dalemusser/commonshub/internal/app/store/audit"
	userstore "github.com/dalemusser/commonshub/internal/app/store/users"
	"github.com/dalemusser/commonshub/internal/app/system/auditlog"
	sessionauth "github.com/dalemusser/commonshub/internal/app/system/auth"
	"github.com/dalemusser/commonshub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/commonshub/internal/app/system/inputval"
	"github.com/dalemusser/commonshub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users: userstore.New(db),
		Audit: audit,
		Log:   logger,
	}
}

type registerInput struct {
	FullName string `json:"full_name" validate:"required,max=100" label:"Name"`
	Email    string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password string `json:"password" validate:"required,min=8,max=72" label:"Password"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

// HandleRegister creates an account and signs the new user in.
// POST /api/auth/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	in.FullName = htmlsanitize.PlainText(strings.TrimSpace(in.FullName))
	in.Email = strings.TrimSpace(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.CreateInput{
		FullName: in.FullName,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	h.Audit.Record(ctx, auditEvent(u.ID, audit.EventUserRegistered, true, ""))

	if err := sessionauth.SignIn(w, r, &sessionauth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("sign-in after register failed", zap.Error(err))
	}
	shared.JSON(w, http.StatusCreated, u)
}

// HandleLogin verifies credentials and establishes a session.
// POST /api/auth/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, in.Email)
	if err == mongo.ErrNoDocuments {
		h.Audit.Record(ctx, auditEvent(primitive.NilObjectID, audit.EventLoginFailedUserNotFound, false, in.Email))
		// Same message either way so the endpoint does not confirm
		// which emails have accounts.
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	if !userstore.CheckPassword(u, in.Password) {
		h.Audit.Record(ctx, auditEvent(u.ID, audit.EventLoginFailedWrongPassword, false, ""))
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	if err := sessionauth.SignIn(w, r, &sessionauth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	}); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		apierrors.WriteMessage(w, http.StatusInternalServerError, "Unable to create session.")
		return
	}

	h.Audit.Record(ctx, auditEvent(u.ID, audit.EventLoginSuccess, true, ""))
	shared.JSON(w, http.StatusOK, u)
}

// HandleLogout clears the session.
// POST /api/auth/logout
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := sessionauth.CurrentUser(r); ok {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			h.Audit.Record(r.Context(), auditEvent(oid, audit.EventLogout, true, ""))
		}
	}
	if err := sessionauth.SignOut(w, r); err != nil {
		h.Log.Warn("sign out failed", zap.Error(err))
	}
	shared.JSON(w, http.StatusOK, map[string]string{"message": "Signed out."})
}

// ServeMe returns the signed-in user's account.
// GET /api/auth/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := sessionauth.CurrentUser(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, oid)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, user)
}
