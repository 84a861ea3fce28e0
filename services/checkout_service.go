package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/yashrajoria/checkout-service/logger"
	"github.com/yashrajoria/checkout-service/models"
	aws_pkg "github.com/yashrajoria/checkout-service/pkg/aws"
	"go.uber.org/zap"
)

const (
	eventCheckoutSessionCreated = "checkout_session_created"
	publishTimeout              = 5 * time.Second
)

// PaymentGateway creates hosted checkout sessions at a payment provider.
// Implementations wrap ErrPaymentDeclined when the provider declined the card.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (string, error)
}

// MetricsRecorder is satisfied by *aws_pkg.MetricsClient.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

// CheckoutService turns a cart into a hosted checkout session.
type CheckoutService interface {
	CreateOrder(ctx context.Context, req *models.OrderRequest) (string, *CheckoutError)
}

type checkoutServiceImpl struct {
	gateway     PaymentGateway
	frontendURL string
	timeout     time.Duration
	metrics     MetricsRecorder
	snsClient   aws_pkg.SNSPublisher
	snsTopicArn string
	logger      *zap.Logger
}

// NewCheckoutService wires the checkout flow. metrics and snsClient may be nil.
func NewCheckoutService(
	gateway PaymentGateway,
	frontendURL string,
	timeout time.Duration,
	metrics MetricsRecorder,
	snsClient aws_pkg.SNSPublisher,
	snsTopicArn string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		gateway:     gateway,
		frontendURL: frontendURL,
		timeout:     timeout,
		metrics:     metrics,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		logger:      logger,
	}
}

// CreateOrder validates req, asks the gateway for a session and returns its id.
// Invalid input never reaches the gateway.
func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, req *models.OrderRequest) (string, *CheckoutError) {
	log := logger.For(ctx, s.logger)

	order, cerr := ValidateOrder(req)
	if cerr != nil {
		log.Info("Checkout rejected",
			zap.String("reason", string(cerr.Kind)),
			zap.NamedError("detail", cerr.Err),
		)
		s.recordCount(aws_pkg.MetricCheckoutRejected, map[string]string{"Reason": string(cerr.Kind)})
		return "", cerr
	}

	sessionReq := BuildSessionRequest(order, s.frontendURL)
	// ValidateOrder already rejected carts whose total overflows.
	amountTotal, _ := sessionReq.AmountTotal()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	sessionID, err := s.gateway.CreateCheckoutSession(callCtx, sessionReq)
	s.recordLatency(aws_pkg.MetricPaymentProviderLatency, time.Since(start))

	if err != nil {
		log.Error("Stripe checkout session creation failed",
			zap.Int("line_items", len(sessionReq.LineItems)),
			zap.Error(err),
		)
		if errors.Is(err, ErrPaymentDeclined) {
			s.recordCount(aws_pkg.MetricPaymentDeclined, nil)
			return "", newCheckoutError(KindPaymentDeclined, MsgPaymentDeclined, err)
		}
		s.recordCount(aws_pkg.MetricPaymentProviderErrors, nil)
		return "", newCheckoutError(KindRemoteFailure, MsgInternal, err)
	}

	log.Info("Checkout session created",
		zap.String("session_id", sessionID),
		zap.Int64("amount_total", amountTotal),
	)
	s.recordCount(aws_pkg.MetricCheckoutSessionsCreated, nil)

	s.publishEvent(log, models.CheckoutEvent{
		Type:        eventCheckoutSessionCreated,
		SessionID:   sessionID,
		ItemCount:   len(sessionReq.LineItems),
		AmountTotal: amountTotal,
		Currency:    models.Currency,
		RequestID:   logger.RequestIDFromContext(ctx),
		Timestamp:   time.Now().UTC(),
	})

	return sessionID, nil
}

// publishEvent sends the event to SNS in the background. The session already
// exists, so a slow or failing publish is only logged.
func (s *checkoutServiceImpl) publishEvent(log *zap.Logger, event models.CheckoutEvent) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		log.Error("Failed to marshal checkout event", zap.Error(err))
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.snsClient.Publish(ctx, s.snsTopicArn, event.Type, b); err != nil {
			log.Error("Failed to publish checkout event",
				zap.String("event_type", event.Type),
				zap.String("session_id", event.SessionID),
				zap.Error(err),
			)
			return
		}
		log.Info("Checkout event published",
			zap.String("event_type", event.Type),
			zap.String("session_id", event.SessionID),
		)
	}()
}

// Metrics are shipped off the request path.
func (s *checkoutServiceImpl) recordCount(metricName string, dimensions map[string]string) {
	if s.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.RecordCount(ctx, metricName, dimensions); err != nil {
			s.logger.Warn("Failed to record metric", zap.String("metric", metricName), zap.Error(err))
		}
	}()
}

func (s *checkoutServiceImpl) recordLatency(metricName string, d time.Duration) {
	if s.metrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.metrics.RecordLatency(ctx, metricName, d, map[string]string{"Provider": "stripe"}); err != nil {
			s.logger.Warn("Failed to record metric", zap.String("metric", metricName), zap.Error(err))
		}
	}()
}
