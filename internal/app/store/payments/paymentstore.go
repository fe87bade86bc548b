// internal/app/store/payments/paymentstore.go
package paymentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/commonshub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrAlreadyFinalized is returned when a confirmation arrives for a
	// payment that already left pending. Completed and failed are
	// terminal; replayed provider webhooks must not flip the result.
	ErrAlreadyFinalized = errors.New("payment has already been finalized")

	// ErrDuplicateTransaction is returned when the provider-assigned
	// transaction ID was already recorded for that provider.
	ErrDuplicateTransaction = errors.New("a payment with this transaction id already exists")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payments")}
}

// CreateInput carries the fields needed to record a pending payment.
type CreateInput struct {
	UserID        primitive.ObjectID
	CommunityID   primitive.ObjectID
	EventID       *primitive.ObjectID
	Amount        int64
	Currency      string
	Provider      string
	TransactionID string
}

// Create records a payment in pending status, keyed by the
// provider-assigned transaction ID.
func (s *Store) Create(ctx context.Context, in CreateInput) (models.Payment, error) {
	now := time.Now().UTC()
	p := models.Payment{
		ID:            primitive.NewObjectID(),
		UserID:        in.UserID,
		CommunityID:   in.CommunityID,
		EventID:       in.EventID,
		Amount:        in.Amount,
		Currency:      in.Currency,
		Provider:      in.Provider,
		TransactionID: in.TransactionID,
		Status:        models.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Payment{}, ErrDuplicateTransaction
		}
		return models.Payment{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Payment, error) {
	var p models.Payment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// GetByTransactionID resolves a payment from the provider's identifier.
func (s *Store) GetByTransactionID(ctx context.Context, provider, transactionID string) (models.Payment, error) {
	var p models.Payment
	err := s.c.FindOne(ctx, bson.M{"provider": provider, "transaction_id": transactionID}).Decode(&p)
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// Finalize moves a pending payment to newStatus. The status check and
// the write happen in one FindOneAndUpdate, so of two concurrent
// confirmations exactly one applies; the loser (and any webhook
// replay) gets ErrAlreadyFinalized. mongo.ErrNoDocuments means no such
// payment exists at all.
func (s *Store) Finalize(ctx context.Context, id primitive.ObjectID, newStatus string) (models.Payment, error) {
	filter := bson.M{"_id": id, "status": models.PaymentPending}
	update := bson.M{"$set": bson.M{"status": newStatus, "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Payment
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		// Either the payment does not exist or it is already terminal.
		if findErr := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); findErr == mongo.ErrNoDocuments {
			return models.Payment{}, mongo.ErrNoDocuments
		} else if findErr != nil {
			return models.Payment{}, findErr
		}
		return models.Payment{}, ErrAlreadyFinalized
	}
	if err != nil {
		return models.Payment{}, err
	}
	return p, nil
}

// HasCompletedEventPayment reports whether userID holds a completed
// payment for the event. This is the "paid" fact the authorization
// gate consults for priced events.
func (s *Store) HasCompletedEventPayment(ctx context.Context, userID, eventID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"user_id":  userID,
		"event_id": eventID,
		"status":   models.PaymentCompleted,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns a user's payments, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Payment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
