// Package postpolicy provides authorization policies for community posts.
package postpolicy

import (
	"context"
	"errors"

	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/membership"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleChecker resolves a user's role in a community. The membership
// ledger satisfies it.
type RoleChecker interface {
	RoleOf(ctx context.Context, communityID, userID primitive.ObjectID) (string, error)
}

// CanModify reports whether userID may delete the post. Only the
// author can; everyone else gets authz.ErrForbidden, community role
// notwithstanding.
func CanModify(p models.Post, userID primitive.ObjectID) error {
	if p.UserID != userID {
		return authz.ErrForbidden
	}
	return nil
}

// CanPost reports whether userID may create posts or comments in the
// community: any active member can.
func CanPost(ctx context.Context, roles RoleChecker, communityID, userID primitive.ObjectID) error {
	_, err := roles.RoleOf(ctx, communityID, userID)
	if errors.Is(err, membership.ErrNoMembership) {
		return authz.ErrForbidden
	}
	return err
}
