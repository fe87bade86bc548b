// internal/app/providers/razorpay/razorpay.go

// Package razorpay adapts the Razorpay orders API to the payment
// provider interface.
package razorpay

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/commonshub/internal/app/system/payments"
	"github.com/dalemusser/commonshub/internal/domain/models"
	"github.com/google/uuid"
	razorpay "github.com/razorpay/razorpay-go"
)

type Provider struct {
	client *razorpay.Client
}

func New(keyID, keySecret string) *Provider {
	return &Provider{client: razorpay.NewClient(keyID, keySecret)}
}

func (p *Provider) Name() string { return models.ProviderRazorpay }

// CreateOrder creates a Razorpay order for amount major units. Razorpay
// takes the smallest currency unit (paise for INR), so the amount is
// multiplied by 100. The SDK has no context support; the call runs in a
// goroutine and the result is dropped if ctx expires first.
func (p *Provider) CreateOrder(ctx context.Context, amount int64, currency string, metadata map[string]string) (payments.Order, error) {
	notes := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":   amount * 100,
		"currency": currency,
		"receipt":  "rcpt_" + uuid.NewString(),
		"notes":    notes,
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := p.client.Order.Create(data, nil)
		ch <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return payments.Order{}, ctx.Err()
	case res := <-ch:
		if res.err != nil {
			return payments.Order{}, res.err
		}
		id, ok := res.body["id"].(string)
		if !ok || id == "" {
			return payments.Order{}, errors.New("razorpay response missing order id")
		}
		if st, ok := res.body["status"].(string); ok && st != "created" {
			return payments.Order{}, fmt.Errorf("razorpay order in unexpected status %q", st)
		}
		return payments.Order{TransactionID: id}, nil
	}
}
