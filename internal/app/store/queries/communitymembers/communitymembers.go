package communitymembers

import (
	"context"

	"github.com/dalemusser/commonshub/internal/app/system/status"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Member is one row of the community detail view: a member's identity
// joined from the users collection plus their role in the community.
type Member struct {
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	FullName string             `bson:"full_name" json:"full_name"`
	Email    string             `bson:"email" json:"email"`
	Role     string             `bson:"role" json:"role"`
}

// ListActiveMembers returns identity + role for every active member of
// a community. Stable order: admins first, then moderators, then
// members; within a rank by folded name, then _id.
func ListActiveMembers(ctx context.Context, db *mongo.Database, communityID primitive.ObjectID) ([]Member, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"community_id": communityID, "status": status.Active}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"role_rank": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{"case": bson.M{"$eq": bson.A{"$role", "admin"}}, "then": 0},
					bson.M{"case": bson.M{"$eq": bson.A{"$role", "moderator"}}, "then": 1},
				},
				"default": 2,
			}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "role_rank", Value: 1},
			{Key: "user.full_name_ci", Value: 1},
			{Key: "user._id", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"user_id":   "$user._id",
			"full_name": "$user.full_name",
			"email":     "$user.email",
			"role":      1,
		}}},
	}

	cur, err := db.Collection("memberships").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
