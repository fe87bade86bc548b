// internal/app/features/errors/errors.go

// Package errors maps domain errors to JSON API responses. Every
// handler funnels its failures through Write so the same domain error
// always produces the same status code and body shape.
package errors

import (
	"errors"
	"net/http"

	"github.com/dalemusser/commonshub/internal/app/features/shared"
	"github.com/dalemusser/commonshub/internal/app/policy/eventpolicy"
	communitystore "github.com/dalemusser/commonshub/internal/app/store/communities"
	paymentstore "github.com/dalemusser/commonshub/internal/app/store/payments"
	userstore "github.com/dalemusser/commonshub/internal/app/store/users"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/app/system/membership"
	"github.com/dalemusser/commonshub/internal/app/system/payments"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type errorBody struct {
	Message string `json:"message"`
}

// Write maps err to an HTTP status and writes a JSON error body.
// Unrecognized errors become a generic 500; the detail goes to the log,
// never to the client.
func Write(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		shared.JSON(w, status, errorBody{Message: "server error"})
		return
	}
	shared.JSON(w, status, errorBody{Message: err.Error()})
}

// WriteMessage writes a JSON error body with an explicit status and
// message, for validation failures that carry their own text.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	shared.JSON(w, status, errorBody{Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments),
		errors.Is(err, membership.ErrCommunityNotFound):
		return http.StatusNotFound

	case errors.Is(err, communitystore.ErrDuplicateName),
		errors.Is(err, userstore.ErrDuplicateEmail),
		errors.Is(err, membership.ErrAlreadyMember),
		errors.Is(err, membership.ErrNoMembership),
		errors.Is(err, payments.ErrInvalidAmount),
		errors.Is(err, payments.ErrUnknownProvider),
		errors.Is(err, payments.ErrBadStatus):
		return http.StatusBadRequest

	case errors.Is(err, eventpolicy.ErrPaymentRequired):
		return http.StatusPaymentRequired

	case errors.Is(err, authz.ErrForbidden),
		errors.Is(err, authz.ErrInsufficientRole):
		return http.StatusForbidden

	case errors.Is(err, paymentstore.ErrAlreadyFinalized):
		return http.StatusConflict

	case errors.Is(err, payments.ErrProviderUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
