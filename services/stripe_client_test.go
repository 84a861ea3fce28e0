package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"github.com/yashrajoria/checkout-service/models"
)

type mockSessions struct {
	FnNew  func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	params *stripe.CheckoutSessionParams
}

func (m *mockSessions) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	m.params = params
	if m.FnNew == nil {
		return &stripe.CheckoutSession{ID: "cs_test_id"}, nil
	}
	return m.FnNew(params)
}

func sampleSessionRequest() models.CheckoutSessionRequest {
	return models.CheckoutSessionRequest{
		PaymentMethodTypes: []string{"card"},
		LineItems: []models.LineItem{
			{Currency: "inr", ProductName: "Widget", UnitAmount: 1999, Quantity: 2},
		},
		Mode:       "payment",
		SuccessURL: "http://localhost:5173/success",
		CancelURL:  "http://localhost:5173/payment/error",
		Metadata:   map[string]string{"address": "12 Main St"},
	}
}

func TestStripeService_CreateCheckoutSession(t *testing.T) {
	mock := &mockSessions{}
	svc := &StripeService{sessions: mock}

	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "marker")

	id, err := svc.CreateCheckoutSession(ctx, sampleSessionRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_id", id)

	p := mock.params
	require.NotNil(t, p)
	assert.Equal(t, ctx, p.Context)
	assert.Equal(t, []*string{stripe.String("card")}, p.PaymentMethodTypes)
	assert.Equal(t, "payment", *p.Mode)
	assert.Equal(t, "http://localhost:5173/success", *p.SuccessURL)
	assert.Equal(t, "http://localhost:5173/payment/error", *p.CancelURL)
	assert.Equal(t, "12 Main St", p.Metadata["address"])

	require.Len(t, p.LineItems, 1)
	li := p.LineItems[0]
	assert.Equal(t, int64(2), *li.Quantity)
	assert.Equal(t, "inr", *li.PriceData.Currency)
	assert.Equal(t, int64(1999), *li.PriceData.UnitAmount)
	assert.Equal(t, "Widget", *li.PriceData.ProductData.Name)
}

func TestStripeService_CardErrorIsDecline(t *testing.T) {
	mock := &mockSessions{FnNew: func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
		return nil, &stripe.Error{
			Type:        stripe.ErrorTypeCard,
			Code:        stripe.ErrorCodeCardDeclined,
			DeclineCode: stripe.DeclineCodeInsufficientFunds,
			Msg:         "Your card has insufficient funds.",
		}
	}}
	svc := &StripeService{sessions: mock}

	_, err := svc.CreateCheckoutSession(context.Background(), sampleSessionRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}

func TestStripeService_OtherErrorsAreNotDeclines(t *testing.T) {
	for _, upstream := range []error{
		&stripe.Error{Type: stripe.ErrorTypeAPI, Msg: "internal"},
		&stripe.Error{Type: stripe.ErrorTypeInvalidRequest, Msg: "bad param"},
		errors.New("dial tcp: i/o timeout"),
	} {
		svc := &StripeService{sessions: &mockSessions{FnNew: func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			return nil, upstream
		}}}

		_, err := svc.CreateCheckoutSession(context.Background(), sampleSessionRequest())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPaymentDeclined)
		assert.ErrorIs(t, err, upstream)
	}
}

func TestNewStripeService(t *testing.T) {
	svc := NewStripeService("sk_test_123", 0)
	assert.NotNil(t, svc.sessions)
}
