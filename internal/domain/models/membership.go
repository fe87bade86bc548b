// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership is the authoritative join between users and communities.
// Exactly one document per (user_id, community_id); role is a scalar
// ("member"|"moderator"|"admin") and status is "active" or "inactive".
type Membership struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommunityID primitive.ObjectID `bson:"community_id" json:"community_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role        string             `bson:"role" json:"role"`
	Status      string             `bson:"status" json:"status"`
	JoinedAt    time.Time          `bson:"joined_at" json:"joined_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
