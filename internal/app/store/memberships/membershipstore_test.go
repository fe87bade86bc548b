package membershipstore_test

import (
	"context"
	"errors"
	"testing"

	membershipstore "github.com/dalemusser/commonshub/internal/app/store/memberships"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/indexes"
	"github.com/dalemusser/commonshub/internal/app/system/status"
	"github.com/dalemusser/commonshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) (context.Context, *membershipstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return ctx, membershipstore.New(db)
}

func TestInsert_DuplicatePair(t *testing.T) {
	ctx, store := setupStore(t)

	communityID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := store.Insert(ctx, communityID, userID, authz.RoleMember); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Second membership for the same pair, even with another role.
	_, err := store.Insert(ctx, communityID, userID, authz.RoleModerator)
	if !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Errorf("duplicate pair: got %v, want ErrDuplicateMembership", err)
	}

	// The same user in a different community is fine.
	if _, err := store.Insert(ctx, primitive.NewObjectID(), userID, authz.RoleMember); err != nil {
		t.Errorf("other community: got %v, want nil", err)
	}
}

func TestInsert_RejectsUnknownRole(t *testing.T) {
	ctx, store := setupStore(t)

	_, err := store.Insert(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "owner")
	if err == nil {
		t.Error("unknown role accepted")
	}
}

func TestActiveRole(t *testing.T) {
	ctx, store := setupStore(t)

	communityID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	if _, err := store.Insert(ctx, communityID, userID, authz.RoleModerator); err != nil {
		t.Fatalf("insert: %v", err)
	}

	role, err := store.ActiveRole(ctx, communityID, userID)
	if err != nil {
		t.Fatalf("active role: %v", err)
	}
	if role != authz.RoleModerator {
		t.Errorf("role: got %q, want %q", role, authz.RoleModerator)
	}

	if _, err := store.ActiveRole(ctx, communityID, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing membership: got %v, want ErrNoDocuments", err)
	}
}

func TestReactivate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	store := membershipstore.New(db)

	communityID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	if _, err := store.Insert(ctx, communityID, userID, authz.RoleModerator); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// An active membership cannot be reactivated.
	if _, err := store.Reactivate(ctx, communityID, userID); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("reactivate active membership: got %v, want ErrNoDocuments", err)
	}

	if _, err := db.Collection("memberships").UpdateOne(ctx,
		bson.M{"community_id": communityID, "user_id": userID},
		bson.M{"$set": bson.M{"status": status.Inactive}}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	m, err := store.Reactivate(ctx, communityID, userID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if m.Status != status.Active {
		t.Errorf("status: got %q, want %q", m.Status, status.Active)
	}
	// The prior role does not survive the hold.
	if m.Role != authz.RoleMember {
		t.Errorf("role: got %q, want %q", m.Role, authz.RoleMember)
	}
}

func TestRemoveAndCount(t *testing.T) {
	ctx, store := setupStore(t)

	communityID := primitive.NewObjectID()
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	for _, id := range []primitive.ObjectID{a, b} {
		if _, err := store.Insert(ctx, communityID, id, authz.RoleMember); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	n, err := store.CountByCommunity(ctx, communityID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2", n)
	}

	deleted, err := store.Remove(ctx, communityID, a)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}

	// Removing again deletes nothing.
	deleted, err = store.Remove(ctx, communityID, a)
	if err != nil {
		t.Fatalf("remove again: %v", err)
	}
	if deleted != 0 {
		t.Errorf("second remove deleted %d, want 0", deleted)
	}
}
