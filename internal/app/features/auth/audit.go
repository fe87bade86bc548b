// internal/app/features/auth/audit.go
package auth

import (
	"github.com/dalemusser/commonshub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// auditEvent builds an auth-category audit event. A nil user (failed
// lookup) is recorded without a user ID; detail carries free-form
// context such as the attempted email.
func auditEvent(userID primitive.ObjectID, eventType string, success bool, detail string) audit.Event {
	e := audit.Event{
		Category:  audit.CategoryAuth,
		EventType: eventType,
		Success:   success,
	}
	if userID != primitive.NilObjectID {
		e.UserID = &userID
	}
	if detail != "" {
		e.Details = map[string]string{"detail": detail}
	}
	return e
}
