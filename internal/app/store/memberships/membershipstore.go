// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/status"
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
	errBadRole = errors.New(`role must be "member", "moderator", or "admin"`)

	// ErrDuplicateMembership is returned when a membership already
	// exists for the (user, community) pair. The compound unique index
	// enforces the at-most-one invariant even under concurrent joins.
	ErrDuplicateMembership = errors.New("user is already a member of this community")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

// Insert creates an active membership with the given role.
func (s *Store) Insert(ctx context.Context, communityID, userID primitive.ObjectID, role string) (models.Membership, error) {
	if !authz.IsValidRole(role) {
		return models.Membership{}, errBadRole
	}

	now := time.Now().UTC()
	m := models.Membership{
		ID:          primitive.NewObjectID(),
		CommunityID: communityID,
		UserID:      userID,
		Role:        role,
		Status:      status.Active,
		JoinedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, ErrDuplicateMembership
		}
		return models.Membership{}, err
	}
	return m, nil
}

// Get returns the membership document for (communityID, userID),
// active or not. mongo.ErrNoDocuments when none exists.
func (s *Store) Get(ctx context.Context, communityID, userID primitive.ObjectID) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"community_id": communityID, "user_id": userID}).Decode(&m)
	if err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

// Reactivate flips an inactive membership back to an active plain
// member, resetting joined_at. mongo.ErrNoDocuments when no inactive
// membership exists for the pair, so a racing reactivation loses
// cleanly.
func (s *Store) Reactivate(ctx context.Context, communityID, userID primitive.ObjectID) (models.Membership, error) {
	now := time.Now().UTC()
	var m models.Membership
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"community_id": communityID, "user_id": userID, "status": status.Inactive},
		bson.M{"$set": bson.M{
			"status":     status.Active,
			"role":       authz.RoleMember,
			"joined_at":  now,
			"updated_at": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err != nil {
		return models.Membership{}, err
	}
	return m, nil
}

// ActiveRole returns the role of an active membership, or
// mongo.ErrNoDocuments when the user has no active membership.
func (s *Store) ActiveRole(ctx context.Context, communityID, userID primitive.ObjectID) (string, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{
		"community_id": communityID,
		"user_id":      userID,
		"status":       status.Active,
	}).Decode(&m)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// Remove deletes the membership document for (communityID, userID).
// Returns the number of documents deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, communityID, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"community_id": communityID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ActiveUserIDs returns the user IDs of all active memberships for a
// community. This is the authoritative source the denormalized
// Community.members list is reconciled against.
func (s *Store) ActiveUserIDs(ctx context.Context, communityID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"community_id": communityID, "status": status.Active})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.Membership
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		ids = append(ids, m.UserID)
	}
	return ids, cur.Err()
}

// ListByCommunity returns all memberships for a community, optionally
// filtered by role. If role is empty, returns all memberships.
func (s *Store) ListByCommunity(ctx context.Context, communityID primitive.ObjectID, role string) ([]models.Membership, error) {
	filter := bson.M{"community_id": communityID}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// CountByCommunity returns the count of active memberships for a
// community.
func (s *Store) CountByCommunity(ctx context.Context, communityID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"community_id": communityID, "status": status.Active})
}

// DeleteByCommunity removes all memberships for a community.
// Returns the number of documents deleted.
func (s *Store) DeleteByCommunity(ctx context.Context, communityID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"community_id": communityID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
