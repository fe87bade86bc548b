package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/commonshub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user account.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "$2a$12$invalidhashfortestsonly000000000000000000000000000000",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateCommunity creates a test community owned by ownerID with the
// denormalized member list seeded to {ownerID}.
func (f *Fixtures) CreateCommunity(ctx context.Context, name string, ownerID primitive.ObjectID) models.Community {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Community{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test community description",
		CreatedBy:   ownerID,
		Members:     []primitive.ObjectID{ownerID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("communities").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test community: %v", err)
	}
	return c
}

// CreateMembership creates an active membership record.
func (f *Fixtures) CreateMembership(ctx context.Context, communityID, userID primitive.ObjectID, role string) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Membership{
		ID:          primitive.NewObjectID(),
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
		Status:      "active",
		JoinedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateEvent creates a test event in a community. Price zero means the
// event is free.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, communityID, createdBy primitive.ObjectID, price int64) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Event{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "Test event description",
		Date:        now.Add(72 * time.Hour),
		Location:    "Test Hall",
		Price:       price,
		CreatedBy:   createdBy,
		CommunityID: communityID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("events").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return e
}

// CreatePayment creates a payment record in the given status.
func (f *Fixtures) CreatePayment(ctx context.Context, userID, communityID primitive.ObjectID, eventID *primitive.ObjectID, status string) models.Payment {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Payment{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		CommunityID:   communityID,
		EventID:       eventID,
		Amount:        500,
		Currency:      "INR",
		Provider:      models.ProviderRazorpay,
		TransactionID: "order_" + primitive.NewObjectID().Hex(),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("payments").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test payment: %v", err)
	}
	return p
}
