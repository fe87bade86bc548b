// internal/app/store/events/eventstore.go
package eventstore

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
	return &Store{c: db.Collection("events")}
}

// CreateInput carries the fields needed to create an event.
type CreateInput struct {
	Title       string
	Description string
	Date        time.Time
	Location    string
	Price       int64
	CreatedBy   primitive.ObjectID
	CommunityID primitive.ObjectID
}

func (s *Store) Create(ctx context.Context, in CreateInput) (models.Event, error) {
	now := time.Now().UTC()
	e := models.Event{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Price:       in.Price,
		CreatedBy:   in.CreatedBy,
		CommunityID: in.CommunityID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// List returns events, optionally filtered by community, soonest first.
func (s *Store) List(ctx context.Context, communityID *primitive.ObjectID) ([]models.Event, error) {
	filter := bson.M{}
	if communityID != nil {
		filter["community_id"] = *communityID
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInfo overwrites the mutable fields of an event. Ownership is
// checked by the caller before this runs.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, title, description, location string, date time.Time, price int64) (models.Event, error) {
	set := bson.M{
		"title":       title,
		"description": description,
		"location":    location,
		"date":        date,
		"price":       price,
		"updated_at":  time.Now().UTC(),
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var e models.Event
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&e)
	if err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Delete removes an event by ID. Returns the number of documents
// deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
