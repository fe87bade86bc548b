// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is user content inside a community. Likes is a toggle set (no
// duplicate likes per user); Comments is append-only.
type Post struct {
	ID          primitive.ObjectID   `bson:"_id" json:"id"`
	CommunityID primitive.ObjectID   `bson:"community_id" json:"community_id"`
	UserID      primitive.ObjectID   `bson:"user_id" json:"user_id"`
	Content     string               `bson:"content" json:"content"`
	Media       []string             `bson:"media,omitempty" json:"media,omitempty"`
	Likes       []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments    []Comment            `bson:"comments" json:"comments"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Comment is a single entry in a post's append-only comment list.
type Comment struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
