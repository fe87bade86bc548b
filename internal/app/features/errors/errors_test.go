package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apierrors "github.com/dalemusser/commonshub/internal/app/features/errors"
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

func TestWrite_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{mongo.ErrNoDocuments, http.StatusNotFound},
		{membership.ErrCommunityNotFound, http.StatusNotFound},
		{communitystore.ErrDuplicateName, http.StatusBadRequest},
		{userstore.ErrDuplicateEmail, http.StatusBadRequest},
		{membership.ErrAlreadyMember, http.StatusBadRequest},
		{membership.ErrNoMembership, http.StatusBadRequest},
		{payments.ErrInvalidAmount, http.StatusBadRequest},
		{payments.ErrUnknownProvider, http.StatusBadRequest},
		{payments.ErrBadStatus, http.StatusBadRequest},
		{eventpolicy.ErrPaymentRequired, http.StatusPaymentRequired},
		{authz.ErrForbidden, http.StatusForbidden},
		{authz.ErrInsufficientRole, http.StatusForbidden},
		{paymentstore.ErrAlreadyFinalized, http.StatusConflict},
		{payments.ErrProviderUnavailable, http.StatusBadGateway},
		{stderrors.New("mystery failure"), http.StatusInternalServerError},
		// Wrapped errors still map.
		{fmt.Errorf("joining: %w", membership.ErrAlreadyMember), http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			apierrors.Write(rr, req, zap.NewNop(), tc.err)

			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d", rr.Code, tc.want)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type: got %q", ct)
			}
		})
	}
}

func TestWrite_InternalDetailNotLeaked(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	apierrors.Write(rr, req, zap.NewNop(), stderrors.New("connection to 10.0.0.7 refused"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "10.0.0.7") {
		t.Errorf("internal error detail leaked to client: %s", rr.Body.String())
	}
}
