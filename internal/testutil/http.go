package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dalemusser/commonshub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Email string
}

// SomeUser returns a TestUser with a fresh ObjectID.
func SomeUser(name string) TestUser {
	return TestUser{
		ID:    primitive.NewObjectID().Hex(),
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@test.com",
	}
}

// UserFor returns a TestUser matching an existing user document ID.
func UserFor(id primitive.ObjectID, name, email string) TestUser {
	return TestUser{ID: id.Hex(), Name: name, Email: email}
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the session middleware and injects the user
// directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, user TestUser) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithUser(req, user)
}
