// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a community happening. Price is in major currency units;
// zero means the event is free. Only the creator may modify or delete
// it; anyone may read it.
type Event struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	Location    string             `bson:"location" json:"location"`
	Price       int64              `bson:"price" json:"price"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CommunityID primitive.ObjectID `bson:"community_id" json:"community_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
