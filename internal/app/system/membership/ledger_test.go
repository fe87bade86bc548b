package membership_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/commonshub/internal/app/store/audit"
	communitystore "github.com/dalemusser/commonshub/internal/app/store/communities"
	membershipstore "github.com/dalemusser/commonshub/internal/app/store/memberships"
	"github.com/dalemusser/commonshub/internal/app/system/auditlog"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/indexes"
	"github.com/dalemusser/commonshub/internal/app/system/membership"
	"github.com/dalemusser/commonshub/internal/app/system/status"
	"github.com/dalemusser/commonshub/internal/app/system/txn"
	"github.com/dalemusser/commonshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setupLedger(t *testing.T) (context.Context, *mongo.Database, *membership.Ledger, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	logger := zap.NewNop()
	ledger := membership.NewLedger(db, logger, auditlog.New(audit.New(db), logger))
	return ctx, db, ledger, testutil.NewFixtures(t, db)
}

func TestCreateCommunityWithOwner(t *testing.T) {
	ctx, db, ledger, fx := setupLedger(t)

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")

	c, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "We hike.", owner.ID)
	if err != nil {
		t.Fatalf("create community: %v", err)
	}

	// The owner's admin membership exists.
	role, err := ledger.RoleOf(ctx, c.ID, owner.ID)
	if err != nil {
		t.Fatalf("role of owner: %v", err)
	}
	if role != authz.RoleAdmin {
		t.Errorf("owner role: got %q, want %q", role, authz.RoleAdmin)
	}

	// The denormalized list is seeded with the owner.
	got, err := communitystore.New(db).GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0] != owner.ID {
		t.Errorf("members: got %v, want [%s]", got.Members, owner.ID.Hex())
	}
}

func TestCreateCommunity_DuplicateName(t *testing.T) {
	ctx, _, ledger, fx := setupLedger(t)

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")
	if _, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "", owner.ID); err != nil {
		t.Fatalf("create community: %v", err)
	}

	// Same name differing only in case is still a duplicate.
	_, err := ledger.CreateCommunityWithOwner(ctx, "hikers", "", owner.ID)
	if !errors.Is(err, communitystore.ErrDuplicateName) {
		t.Errorf("duplicate name: got %v, want ErrDuplicateName", err)
	}
}

func TestJoinAndLeave(t *testing.T) {
	ctx, db, ledger, fx := setupLedger(t)

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")
	bella := fx.CreateUser(ctx, "Bella Reyes", "bella@test.com")

	c, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "", owner.ID)
	if err != nil {
		t.Fatalf("create community: %v", err)
	}

	// Join: membership + member list both updated.
	m, err := ledger.Join(ctx, c.ID, bella.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if m.Role != authz.RoleMember {
		t.Errorf("joined role: got %q, want %q", m.Role, authz.RoleMember)
	}

	communities := communitystore.New(db)
	got, err := communities.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("members after join: got %d, want 2", len(got.Members))
	}

	// Joining again is rejected.
	if _, err := ledger.Join(ctx, c.ID, bella.ID); !errors.Is(err, membership.ErrAlreadyMember) {
		t.Errorf("second join: got %v, want ErrAlreadyMember", err)
	}

	// Leave removes both records.
	if err := ledger.Leave(ctx, c.ID, bella.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	got, err = communities.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	if len(got.Members) != 1 || got.Members[0] != owner.ID {
		t.Errorf("members after leave: got %v, want only owner", got.Members)
	}
	if _, err := membershipstore.New(db).Get(ctx, c.ID, bella.ID); err != mongo.ErrNoDocuments {
		t.Errorf("membership after leave: got %v, want ErrNoDocuments", err)
	}

	// Leaving again is rejected.
	if err := ledger.Leave(ctx, c.ID, bella.ID); !errors.Is(err, membership.ErrNoMembership) {
		t.Errorf("second leave: got %v, want ErrNoMembership", err)
	}
}

func TestJoin_ReactivatesInactiveMembership(t *testing.T) {
	ctx, db, ledger, fx := setupLedger(t)

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")
	bella := fx.CreateUser(ctx, "Bella Reyes", "bella@test.com")

	c, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "", owner.ID)
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if _, err := ledger.Join(ctx, c.ID, bella.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Put the membership on hold, as moderation would.
	res, err := db.Collection("memberships").UpdateOne(ctx,
		bson.M{"community_id": c.ID, "user_id": bella.ID},
		bson.M{"$set": bson.M{"status": status.Inactive}})
	if err != nil {
		t.Fatalf("deactivate membership: %v", err)
	}
	if res.ModifiedCount != 1 {
		t.Fatalf("deactivate membership: modified %d", res.ModifiedCount)
	}

	// Rejoining is not a duplicate: the held membership comes back as
	// an active plain member.
	m, err := ledger.Join(ctx, c.ID, bella.ID)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if m.Status != status.Active {
		t.Errorf("status after rejoin: got %q, want %q", m.Status, status.Active)
	}
	if m.Role != authz.RoleMember {
		t.Errorf("role after rejoin: got %q, want %q", m.Role, authz.RoleMember)
	}

	// Still exactly one document for the pair, and the member list
	// includes bella again.
	n, err := db.Collection("memberships").CountDocuments(ctx,
		bson.M{"community_id": c.ID, "user_id": bella.ID})
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if n != 1 {
		t.Errorf("memberships for pair: got %d, want 1", n)
	}
	got, err := communitystore.New(db).GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	found := false
	for _, id := range got.Members {
		if id == bella.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("members after rejoin: %v does not include %s", got.Members, bella.ID.Hex())
	}

	// A third join against the now-active membership is rejected.
	if _, err := ledger.Join(ctx, c.ID, bella.ID); !errors.Is(err, membership.ErrAlreadyMember) {
		t.Errorf("join while active: got %v, want ErrAlreadyMember", err)
	}
}

func TestJoin_CommunityNotFound(t *testing.T) {
	ctx, _, ledger, fx := setupLedger(t)

	u := fx.CreateUser(ctx, "Bella Reyes", "bella@test.com")
	_, err := ledger.Join(ctx, primitive.NewObjectID(), u.ID)
	if !errors.Is(err, membership.ErrCommunityNotFound) {
		t.Errorf("join missing community: got %v, want ErrCommunityNotFound", err)
	}

	if err := ledger.Leave(ctx, primitive.NewObjectID(), u.ID); !errors.Is(err, membership.ErrCommunityNotFound) {
		t.Errorf("leave missing community: got %v, want ErrCommunityNotFound", err)
	}
}

// On a deployment without transaction support the dual write runs
// unguarded and the ledger owes a repair pass. Seed a diverged member
// list and check a join converges it, not just appends to it.
func TestJoin_RepairsAfterUnguardedWrite(t *testing.T) {
	ctx, db, ledger, fx := setupLedger(t)

	fellBack, err := txn.Run(ctx, db, zap.NewNop(), func(context.Context) error { return nil })
	if err != nil {
		t.Fatalf("txn run: %v", err)
	}
	if !fellBack {
		t.Skip("deployment supports transactions; unguarded path not reachable")
	}

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")
	bella := fx.CreateUser(ctx, "Bella Reyes", "bella@test.com")

	c, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "", owner.ID)
	if err != nil {
		t.Fatalf("create community: %v", err)
	}

	// The kind of damage an interrupted earlier mutation leaves behind.
	communities := communitystore.New(db)
	if err := communities.SetMembers(ctx, c.ID, nil); err != nil {
		t.Fatalf("tamper members: %v", err)
	}

	if _, err := ledger.Join(ctx, c.ID, bella.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	got, err := communities.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	want := map[primitive.ObjectID]bool{owner.ID: true, bella.ID: true}
	if len(got.Members) != len(want) {
		t.Fatalf("members after join: got %v, want owner and joiner", got.Members)
	}
	for _, id := range got.Members {
		if !want[id] {
			t.Errorf("unexpected member %s after repair", id.Hex())
		}
	}
}

func TestRoleOf(t *testing.T) {
	ctx, _, ledger, fx := setupLedger(t)

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")
	bella := fx.CreateUser(ctx, "Bella Reyes", "bella@test.com")
	stranger := fx.CreateUser(ctx, "Caleb Osei", "caleb@test.com")

	c, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "", owner.ID)
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if _, err := ledger.Join(ctx, c.ID, bella.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	cases := []struct {
		name    string
		userID  primitive.ObjectID
		want    string
		wantErr error
	}{
		{"owner is admin", owner.ID, authz.RoleAdmin, nil},
		{"joiner is member", bella.ID, authz.RoleMember, nil},
		{"stranger has no membership", stranger.ID, "", membership.ErrNoMembership},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := ledger.RoleOf(ctx, c.ID, tc.userID)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tc.wantErr)
			}
			if role != tc.want {
				t.Errorf("role: got %q, want %q", role, tc.want)
			}
		})
	}
}

func TestReconcile_RepairsMemberList(t *testing.T) {
	ctx, db, ledger, fx := setupLedger(t)

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")
	bella := fx.CreateUser(ctx, "Bella Reyes", "bella@test.com")

	c, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "", owner.ID)
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if _, err := ledger.Join(ctx, c.ID, bella.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Simulate a partial write: the denormalized list lost bella and
	// gained a user who holds no membership.
	communities := communitystore.New(db)
	ghost := primitive.NewObjectID()
	if err := communities.SetMembers(ctx, c.ID, []primitive.ObjectID{owner.ID, ghost}); err != nil {
		t.Fatalf("tamper members: %v", err)
	}

	members, err := ledger.Reconcile(ctx, c.ID)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	want := map[primitive.ObjectID]bool{owner.ID: true, bella.ID: true}
	if len(members) != len(want) {
		t.Fatalf("reconciled members: got %d, want %d", len(members), len(want))
	}
	for _, id := range members {
		if !want[id] {
			t.Errorf("unexpected member %s after reconcile", id.Hex())
		}
	}

	got, err := communities.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get community: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("stored members after reconcile: got %v", got.Members)
	}
}

func TestReconcile_CommunityNotFound(t *testing.T) {
	ctx, _, ledger, _ := setupLedger(t)

	_, err := ledger.Reconcile(ctx, primitive.NewObjectID())
	if !errors.Is(err, membership.ErrCommunityNotFound) {
		t.Errorf("reconcile missing community: got %v, want ErrCommunityNotFound", err)
	}
}

func TestDeleteCommunity_RemovesMemberships(t *testing.T) {
	ctx, db, ledger, fx := setupLedger(t)

	owner := fx.CreateUser(ctx, "Alice Park", "alice@test.com")
	bella := fx.CreateUser(ctx, "Bella Reyes", "bella@test.com")

	c, err := ledger.CreateCommunityWithOwner(ctx, "Hikers", "", owner.ID)
	if err != nil {
		t.Fatalf("create community: %v", err)
	}
	if _, err := ledger.Join(ctx, c.ID, bella.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := ledger.DeleteCommunity(ctx, c.ID); err != nil {
		t.Fatalf("delete community: %v", err)
	}

	if _, err := communitystore.New(db).GetByID(ctx, c.ID); err != mongo.ErrNoDocuments {
		t.Errorf("community after delete: got %v, want ErrNoDocuments", err)
	}
	n, err := membershipstore.New(db).CountByCommunity(ctx, c.ID)
	if err != nil {
		t.Fatalf("count memberships: %v", err)
	}
	if n != 0 {
		t.Errorf("memberships after delete: got %d, want 0", n)
	}

	if err := ledger.DeleteCommunity(ctx, c.ID); !errors.Is(err, membership.ErrCommunityNotFound) {
		t.Errorf("second delete: got %v, want ErrCommunityNotFound", err)
	}
}
