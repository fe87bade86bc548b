// internal/app/system/payments/reconciler.go

// Package payments owns the payment lifecycle: a record is created in
// pending when the provider accepts the order, and moves exactly once
// to completed or failed. Completed and failed are terminal; a second
// confirmation, however it arrives, is rejected.
package payments

import (
	"context"
	"errors"

	"github.com/dalemusser/commonshub/internal/app/store/audit"
	paymentstore "github.com/dalemusser/commonshub/internal/app/store/payments"
	"github.com/dalemusser/commonshub/internal/app/system/auditlog"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Reconciler struct {
	store     *paymentstore.Store
	providers map[string]Provider
	audit     *auditlog.Logger
	log       *zap.Logger
}

func NewReconciler(db *mongo.Database, log *zap.Logger, audit *auditlog.Logger, providers ...Provider) *Reconciler {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Reconciler{
		store:     paymentstore.New(db),
		providers: byName,
		audit:     audit,
		log:       log,
	}
}

// InitiateInput carries everything needed to start a payment.
type InitiateInput struct {
	UserID      primitive.ObjectID
	CommunityID primitive.ObjectID
	EventID     *primitive.ObjectID
	Amount      int64 // major units
	Currency    string
	Provider    string
}

// InitiateResult pairs the stored payment with the provider order the
// client continues the flow with.
type InitiateResult struct {
	Payment models.Payment
	Order   Order
}

// Initiate creates an order with the provider, then records a pending
// payment keyed by the provider's transaction ID. Order creation comes
// first: a payment record only ever exists for an order the provider
// accepted.
func (r *Reconciler) Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error) {
	if in.Amount <= 0 {
		return InitiateResult{}, ErrInvalidAmount
	}
	p, ok := r.providers[in.Provider]
	if !ok {
		return InitiateResult{}, ErrUnknownProvider
	}

	meta := map[string]string{
		"user_id":      in.UserID.Hex(),
		"community_id": in.CommunityID.Hex(),
	}
	if in.EventID != nil {
		meta["event_id"] = in.EventID.Hex()
	}

	order, err := p.CreateOrder(ctx, in.Amount, in.Currency, meta)
	if err != nil {
		r.log.Warn("provider rejected order",
			zap.String("provider", in.Provider),
			zap.Error(err))
		return InitiateResult{}, errors.Join(ErrProviderUnavailable, err)
	}

	payment, err := r.store.Create(ctx, paymentstore.CreateInput{
		UserID:        in.UserID,
		CommunityID:   in.CommunityID,
		EventID:       in.EventID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		Provider:      in.Provider,
		TransactionID: order.TransactionID,
	})
	if err != nil {
		return InitiateResult{}, err
	}

	r.audit.Payment(ctx, audit.EventPaymentInitiated, in.UserID, true, map[string]string{
		"payment_id":     payment.ID.Hex(),
		"provider":       in.Provider,
		"transaction_id": order.TransactionID,
	})
	return InitiateResult{Payment: payment, Order: order}, nil
}

// Confirm moves a pending payment to the given terminal status. The
// first confirmation wins; later ones, including webhook replays and
// attempts to flip an already-settled result, get ErrAlreadyFinalized
// from the store.
func (r *Reconciler) Confirm(ctx context.Context, paymentID primitive.ObjectID, newStatus string) (models.Payment, error) {
	if newStatus != models.PaymentCompleted && newStatus != models.PaymentFailed {
		return models.Payment{}, ErrBadStatus
	}

	p, err := r.store.Finalize(ctx, paymentID, newStatus)
	if err != nil {
		if errors.Is(err, paymentstore.ErrAlreadyFinalized) {
			if existing, gerr := r.store.GetByID(ctx, paymentID); gerr == nil {
				r.audit.Payment(ctx, audit.EventPaymentRejected, existing.UserID, false, map[string]string{
					"payment_id": paymentID.Hex(),
					"requested":  newStatus,
					"settled":    existing.Status,
				})
			}
		}
		return models.Payment{}, err
	}

	eventType := audit.EventPaymentCompleted
	if newStatus == models.PaymentFailed {
		eventType = audit.EventPaymentFailed
	}
	r.audit.Payment(ctx, eventType, p.UserID, true, map[string]string{
		"payment_id":     p.ID.Hex(),
		"provider":       p.Provider,
		"transaction_id": p.TransactionID,
	})
	return p, nil
}

// Get returns one payment by ID.
func (r *Reconciler) Get(ctx context.Context, paymentID primitive.ObjectID) (models.Payment, error) {
	return r.store.GetByID(ctx, paymentID)
}

// ListByUser returns a user's payments, newest first.
func (r *Reconciler) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	return r.store.ListByUser(ctx, userID)
}

// HasCompletedEventPayment reports whether the user holds a completed
// payment for the event.
func (r *Reconciler) HasCompletedEventPayment(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error) {
	return r.store.HasCompletedEventPayment(ctx, userID, eventID)
}

// IsNotFound reports whether err means the payment does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
