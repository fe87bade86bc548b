// Package eventpolicy provides authorization policies for community events.
//
// Authorization rules:
//   - Only the event's creator can modify or delete it
//   - Attending a priced event requires a completed payment for that event
package eventpolicy

import (
	"context"
	"errors"

	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrPaymentRequired is returned by CanAttend when a priced event has
// no completed payment for the user.
var ErrPaymentRequired = errors.New("a completed payment is required for this event")

// PaymentChecker answers whether a user has paid for an event. The
// payment reconciler satisfies it.
type PaymentChecker interface {
	HasCompletedEventPayment(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error)
}

// CanModify reports whether userID may update or delete the event.
// Only the creator can; everyone else gets authz.ErrForbidden,
// community role notwithstanding.
func CanModify(e models.Event, userID primitive.ObjectID) error {
	if e.CreatedBy != userID {
		return authz.ErrForbidden
	}
	return nil
}

// CanAttend reports whether userID may attend the event. Free events
// are open; priced events require a completed payment, otherwise
// ErrPaymentRequired.
func CanAttend(ctx context.Context, paid PaymentChecker, e models.Event, userID primitive.ObjectID) error {
	if e.Price <= 0 {
		return nil
	}
	ok, err := paid.HasCompletedEventPayment(ctx, userID, e.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPaymentRequired
	}
	return nil
}
