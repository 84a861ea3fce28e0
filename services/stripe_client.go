package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/yashrajoria/checkout-service/models"
)

// sessionCreator is the part of the Stripe checkout session client we use.
type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeService implements PaymentGateway with Stripe Checkout.
type StripeService struct {
	sessions sessionCreator
}

// NewStripeService builds a Stripe client bound to secretKey. Network retries
// are disabled and every HTTP call is capped at timeout.
func NewStripeService(secretKey string, timeout time.Duration) *StripeService {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendConfig),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendConfig),
	}
	sc := client.New(secretKey, backends)
	return &StripeService{sessions: sc.CheckoutSessions}
}

// CreateCheckoutSession creates a hosted checkout session and returns its id.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (string, error) {
	params := checkoutSessionParams(req)
	params.Context = ctx

	sess, err := s.sessions.New(params)
	if err != nil {
		return "", classifyStripeError(err)
	}
	return sess.ID, nil
}

func checkoutSessionParams(req models.CheckoutSessionRequest) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(li.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.ProductName),
				},
				UnitAmount: stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice(req.PaymentMethodTypes),
		LineItems:          lineItems,
		Mode:               stripe.String(req.Mode),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	return params
}

// classifyStripeError wraps card errors with ErrPaymentDeclined. Everything
// else is an upstream failure.
func classifyStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
		return fmt.Errorf("%w: code=%s decline_code=%s: %v",
			ErrPaymentDeclined, stripeErr.Code, stripeErr.DeclineCode, stripeErr)
	}
	return fmt.Errorf("stripe checkout session: %w", err)
}
