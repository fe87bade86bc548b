package eventpolicy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/commonshub/internal/app/policy/eventpolicy"
	"github.com/dalemusser/commonshub/internal/app/system/authz"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakePayments marks user IDs as having a completed payment.
type fakePayments map[primitive.ObjectID]bool

func (f fakePayments) HasCompletedEventPayment(_ context.Context, userID, _ primitive.ObjectID) (bool, error) {
	return f[userID], nil
}

func TestCanModify(t *testing.T) {
	creator := primitive.NewObjectID()
	other := primitive.NewObjectID()

	e := models.Event{
		ID:          primitive.NewObjectID(),
		CommunityID: primitive.NewObjectID(),
		CreatedBy:   creator,
	}

	cases := []struct {
		name    string
		userID  primitive.ObjectID
		wantErr error
	}{
		{"creator can modify", creator, nil},
		{"anyone else cannot", other, authz.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := eventpolicy.CanModify(e, tc.userID)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCanAttend(t *testing.T) {
	paidUser := primitive.NewObjectID()
	unpaidUser := primitive.NewObjectID()
	paid := fakePayments{paidUser: true}

	free := models.Event{ID: primitive.NewObjectID(), Price: 0}
	priced := models.Event{ID: primitive.NewObjectID(), Price: 500}

	cases := []struct {
		name    string
		event   models.Event
		userID  primitive.ObjectID
		wantErr error
	}{
		{"free event is open", free, unpaidUser, nil},
		{"paid user attends priced event", priced, paidUser, nil},
		{"unpaid user is refused", priced, unpaidUser, eventpolicy.ErrPaymentRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := eventpolicy.CanAttend(context.Background(), paid, tc.event, tc.userID)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}
