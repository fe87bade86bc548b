// internal/domain/models/community.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community is a user-created group that people join and post into.
//
// Members is a denormalized list used for fast is-member checks. The
// memberships collection is the authoritative record; whenever the two
// disagree, Members is repaired from the active memberships.
type Community struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	CreatedBy   primitive.ObjectID   `bson:"created_by" json:"created_by"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
