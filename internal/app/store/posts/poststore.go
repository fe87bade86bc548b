// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"time"

	"github.com/dalemusser/commonshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("posts")}
}

func (s *Store) Create(ctx context.Context, communityID, userID primitive.ObjectID, content string, media []string) (models.Post, error) {
	now := time.Now().UTC()
	p := models.Post{
		ID:          primitive.NewObjectID(),
		CommunityID: communityID,
		UserID:      userID,
		Content:     content,
		Media:       media,
		Likes:       []primitive.ObjectID{},
		Comments:    []models.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListByCommunity returns a community's posts, newest first.
func (s *Store) ListByCommunity(ctx context.Context, communityID primitive.ObjectID) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"community_id": communityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Like adds userID to the post's like set. $addToSet makes the add
// idempotent under concurrent or replayed requests.
func (s *Store) Like(ctx context.Context, postID, userID primitive.ObjectID) (models.Post, error) {
	return s.findAndUpdate(ctx, postID, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

// Unlike removes userID from the post's like set.
func (s *Store) Unlike(ctx context.Context, postID, userID primitive.ObjectID) (models.Post, error) {
	return s.findAndUpdate(ctx, postID, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// AddComment appends a comment. $push never rewrites the existing
// array, so concurrent appends are never lost.
func (s *Store) AddComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) (models.Post, error) {
	return s.findAndUpdate(ctx, postID, bson.M{
		"$push": bson.M{"comments": c},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

// Delete removes a post by ID. Returns the number of documents deleted
// (0 or 1). Ownership is checked by the caller.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Post
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}
