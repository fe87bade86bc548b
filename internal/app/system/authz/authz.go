// internal/app/system/authz/authz.go
package authz

import (
	"errors"
	"net/http"

	"github.com/dalemusser/commonshub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Authorization denial kinds. Handlers recover these at the operation
// boundary and map them to stable status codes; they are never
// swallowed.
var (
	// ErrForbidden means the acting user does not own the resource.
	ErrForbidden = errors.New("you are not allowed to modify this resource")

	// ErrInsufficientRole means the acting user's community role is
	// below the required minimum (or they hold no membership at all).
	ErrInsufficientRole = errors.New("your role in this community does not permit this action")
)

// UserCtx returns the current user's name, Mongo ObjectID, and a found
// flag. If no user is present in context or the user ID is malformed,
// it returns "", NilObjectID, false. This ensures callers can trust
// that ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", primitive.NilObjectID, false
	}
	return user.Name, userID, true
}
