// internal/app/features/payments/handler.go
package payments

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/commonshub/internal/app/features/errors"
	"github.com/dalemusser/commonshub/internal/app/features/shared"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/inputval"
	"github.com/dalemusser/commonshub/internal/app/system/payments"
	"github.com/dalemusser/commonshub/internal/app/system/timeouts"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Reconciler      *payments.Reconciler
	DefaultCurrency string
	Log             *zap.Logger
}

func NewHandler(rec *payments.Reconciler, defaultCurrency string, logger *zap.Logger) *Handler {
	return &Handler{Reconciler: rec, DefaultCurrency: defaultCurrency, Log: logger}
}

type initiateInput struct {
	Amount      int64  `json:"amount" validate:"gt=0" label:"Amount"`
	Currency    string `json:"currency" validate:"omitempty,len=3" label:"Currency"`
	CommunityID string `json:"community_id" validate:"required" label:"Community"`
	EventID     string `json:"event_id" validate:"omitempty" label:"Event"`
}

type statusInput struct {
	Status string `json:"status" validate:"required,oneof=completed failed" label:"Status"`
}

// initiateResponse mirrors what browser payment flows need: the stored
// payment plus the provider handle (order ID, and a client secret when
// the provider issues one).
type initiateResponse struct {
	Payment       models.Payment `json:"payment"`
	TransactionID string         `json:"transaction_id"`
	ClientSecret  string         `json:"client_secret,omitempty"`
}

// HandleInitiateRazorpay creates a Razorpay order and a pending payment.
// POST /api/payments/razorpay
func (h *Handler) HandleInitiateRazorpay(w http.ResponseWriter, r *http.Request) {
	h.initiate(w, r, models.ProviderRazorpay)
}

// HandleInitiateStripe creates a Stripe payment intent and a pending payment.
// POST /api/payments/stripe
func (h *Handler) HandleInitiateStripe(w http.ResponseWriter, r *http.Request) {
	h.initiate(w, r, models.ProviderStripe)
}

func (h *Handler) initiate(w http.ResponseWriter, r *http.Request, provider string) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	var in initiateInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}
	if in.Currency == "" {
		in.Currency = h.DefaultCurrency
	}

	communityID, err := primitive.ObjectIDFromHex(in.CommunityID)
	if err != nil {
		apierrors.WriteMessage(w, http.StatusNotFound, "Community not found.")
		return
	}
	var eventID *primitive.ObjectID
	if in.EventID != "" {
		id, err := primitive.ObjectIDFromHex(in.EventID)
		if err != nil {
			apierrors.WriteMessage(w, http.StatusNotFound, "Event not found.")
			return
		}
		eventID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Reconciler.Initiate(ctx, payments.InitiateInput{
		UserID:      userID,
		CommunityID: communityID,
		EventID:     eventID,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Provider:    provider,
	})
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}

	shared.JSON(w, http.StatusCreated, initiateResponse{
		Payment:       res.Payment,
		TransactionID: res.Order.TransactionID,
		ClientSecret:  res.Order.ClientSecret,
	})
}

// HandleUpdateStatus moves a pending payment to completed or failed.
// Replays and flips of a settled payment get 409.
// POST /api/payments/{id}/status
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var in statusInput
	if err := shared.Decode(r, &in); err != nil {
		apierrors.WriteMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		apierrors.WriteMessage(w, http.StatusBadRequest, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Reconciler.Confirm(ctx, id, in.Status)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	shared.JSON(w, http.StatusOK, p)
}

// ServeView returns one payment. Users only see their own payments.
// GET /api/payments/{id}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
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

	p, err := h.Reconciler.Get(ctx, id)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if p.UserID != userID {
		apierrors.Write(w, r, h.Log, authz.ErrForbidden)
		return
	}
	shared.JSON(w, http.StatusOK, p)
}

// ServeList returns the signed-in user's payments, newest first.
// GET /api/payments
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		apierrors.WriteMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Reconciler.ListByUser(ctx, userID)
	if err != nil {
		apierrors.Write(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Payment{}
	}
	shared.JSON(w, http.StatusOK, list)
}

func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteMessage(w, http.StatusNotFound, "Payment not found.")
		return primitive.NilObjectID, false
	}
	return id, true
}
