// internal/app/providers/stripe/stripe.go

// Package stripe adapts the Stripe payment intents API to the payment
// provider interface.
package stripe

import (
	"context"
	"errors"

	"github.com/dalemusser/commonshub/internal/app/system/payments"
	"github.com/dalemusser/commonshub/internal/domain/models"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

type Provider struct {
	client *client.API
}

func New(secretKey string) *Provider {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Provider{client: sc}
}

func (p *Provider) Name() string { return models.ProviderStripe }

// CreateOrder creates a Stripe payment intent for amount major units.
// Stripe takes the smallest currency unit, so the amount is multiplied
// by 100. The intent's client secret is returned for the browser-side
// confirmation flow.
func (p *Provider) CreateOrder(ctx context.Context, amount int64, currency string, metadata map[string]string) (payments.Order, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount * 100),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := p.client.PaymentIntents.New(params)
	if err != nil {
		return payments.Order{}, err
	}
	if pi.ID == "" {
		return payments.Order{}, errors.New("stripe response missing payment intent id")
	}
	return payments.Order{TransactionID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
