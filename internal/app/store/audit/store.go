// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth       = "auth"
	CategoryMembership = "membership"
	CategoryPayment    = "payment"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLogout                   = "logout"
	EventUserRegistered           = "user_registered"
)

// Membership event types
const (
	EventCommunityCreated = "community_created"
	EventMemberJoined     = "member_joined"
	EventMemberLeft       = "member_left"
	EventMembersRepaired  = "members_repaired"
)

// Payment event types
const (
	EventPaymentInitiated = "payment_initiated"
	EventPaymentCompleted = "payment_completed"
	EventPaymentFailed    = "payment_failed"
	EventPaymentRejected  = "payment_confirmation_rejected"
)

// Event represents an audit event.
type Event struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Timestamp   time.Time           `bson:"timestamp"`
	CommunityID *primitive.ObjectID `bson:"community_id,omitempty"`

	// Event classification
	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who
	UserID  *primitive.ObjectID `bson:"user_id,omitempty"`  // affected user
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty"` // who performed the action

	// Context
	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Insert records one audit event. Timestamp defaults to now.
func (s *Store) Insert(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// ListRecent returns the newest events, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
