// internal/app/store/communities/communitystore.go
package communitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/commonshub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateName = errors.New("a community with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("communities")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Community, error) {
	var c models.Community
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Community{}, err
	}
	return c, nil
}

// Insert writes a fully-populated community document. The caller is
// responsible for running it inside the membership transaction so the
// community is never visible without its owner membership.
func (s *Store) Insert(ctx context.Context, c models.Community) error {
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateName
		}
		return err
	}
	return nil
}

// NewCommunity builds a community document for ownerID with the
// denormalized member list seeded to {ownerID}.
func NewCommunity(name, description string, ownerID primitive.ObjectID) models.Community {
	now := time.Now().UTC()
	return models.Community{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: description,
		CreatedBy:   ownerID,
		Members:     []primitive.ObjectID{ownerID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// AddMember appends userID to the denormalized member list.
// $addToSet keeps the list duplicate-free even under replays.
func (s *Store) AddMember(ctx context.Context, communityID, userID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, communityID, bson.M{
		"$addToSet": bson.M{"members": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// RemoveMember pulls userID from the denormalized member list.
func (s *Store) RemoveMember(ctx context.Context, communityID, userID primitive.ObjectID) error {
	_, err := s.c.UpdateByID(ctx, communityID, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// SetMembers replaces the denormalized member list wholesale. Used by
// the reconcile path, which recomputes it from active memberships.
func (s *Store) SetMembers(ctx context.Context, communityID primitive.ObjectID, members []primitive.ObjectID) error {
	if members == nil {
		members = []primitive.ObjectID{}
	}
	_, err := s.c.UpdateByID(ctx, communityID, bson.M{
		"$set": bson.M{"members": members, "updated_at": time.Now().UTC()},
	})
	return err
}

// List returns all communities, newest first.
func (s *Store) List(ctx context.Context) ([]models.Community, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Community
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a community by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
