package postpolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/commonshub/internal/app/policy/postpolicy"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/membership"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRoles map[primitive.ObjectID]string

func (f fakeRoles) RoleOf(_ context.Context, _, userID primitive.ObjectID) (string, error) {
	role, ok := f[userID]
	if !ok {
		return "", membership.ErrNoMembership
	}
	return role, nil
}

func TestCanModify(t *testing.T) {
	author := primitive.NewObjectID()
	moderator := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	member := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	p := models.Post{
		ID:          primitive.NewObjectID(),
		CommunityID: primitive.NewObjectID(),
		UserID:      author,
	}

	// Role in the community carries no weight: deletion is author-only.
	cases := []struct {
		name    string
		userID  primitive.ObjectID
		wantErr error
	}{
		{"author can modify own post", author, nil},
		{"moderator cannot", moderator, authz.ErrForbidden},
		{"admin cannot", admin, authz.ErrForbidden},
		{"other member cannot", member, authz.ErrForbidden},
		{"non-member cannot", stranger, authz.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := postpolicy.CanModify(p, tc.userID)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCanPost(t *testing.T) {
	member := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	roles := fakeRoles{member: authz.RoleMember}
	communityID := primitive.NewObjectID()

	if err := postpolicy.CanPost(context.Background(), roles, communityID, member); err != nil {
		t.Errorf("member: got %v, want nil", err)
	}
	if err := postpolicy.CanPost(context.Background(), roles, communityID, stranger); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("stranger: got %v, want ErrForbidden", err)
	}
}
