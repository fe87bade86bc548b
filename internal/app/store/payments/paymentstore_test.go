package paymentstore_test

import (
	"context"
	"errors"
	"testing"

	paymentstore "github.com/dalemusser/commonshub/internal/app/store/payments"
	"github.com/dalemusser/commonshub/internal/app/system/indexes"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"github.com/dalemusser/commonshub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func setupStore(t *testing.T) (context.Context, *paymentstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return ctx, paymentstore.New(db)
}

func createInput(txnID string) paymentstore.CreateInput {
	return paymentstore.CreateInput{
		UserID:        primitive.NewObjectID(),
		CommunityID:   primitive.NewObjectID(),
		Amount:        500,
		Currency:      "INR",
		Provider:      models.ProviderRazorpay,
		TransactionID: txnID,
	}
}

func TestCreate_DuplicateTransactionID(t *testing.T) {
	ctx, store := setupStore(t)

	if _, err := store.Create(ctx, createInput("order_abc")); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Same provider, same transaction ID: rejected.
	_, err := store.Create(ctx, createInput("order_abc"))
	if !errors.Is(err, paymentstore.ErrDuplicateTransaction) {
		t.Errorf("duplicate: got %v, want ErrDuplicateTransaction", err)
	}

	// The same transaction ID under a different provider is fine.
	in := createInput("order_abc")
	in.Provider = models.ProviderStripe
	if _, err := store.Create(ctx, in); err != nil {
		t.Errorf("other provider: got %v, want nil", err)
	}
}

func TestFinalize_OnlyOnce(t *testing.T) {
	ctx, store := setupStore(t)

	p, err := store.Create(ctx, createInput("order_once"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Finalize(ctx, p.ID, models.PaymentCompleted)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got.Status != models.PaymentCompleted {
		t.Errorf("status: got %q, want %q", got.Status, models.PaymentCompleted)
	}
	// Any later confirmation loses, whichever status it asks for.
	for _, status := range []string{models.PaymentCompleted, models.PaymentFailed} {
		if _, err := store.Finalize(ctx, p.ID, status); !errors.Is(err, paymentstore.ErrAlreadyFinalized) {
			t.Errorf("finalize %q after settle: got %v, want ErrAlreadyFinalized", status, err)
		}
	}
}

func TestFinalize_NotFound(t *testing.T) {
	ctx, store := setupStore(t)

	_, err := store.Finalize(ctx, primitive.NewObjectID(), models.PaymentCompleted)
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("missing payment: got %v, want ErrNoDocuments", err)
	}
}
