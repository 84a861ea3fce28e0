package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/yashrajoria/checkout-service/pkg/aws"
)

const stripeSecretName = "checkout/STRIPE_SECRET_KEY"

type Config struct {
	Env                string
	Port               string
	FrontendURL        string // redirect base for Stripe and the only CORS origin
	StripeSecretKey    string
	PaymentTimeout     time.Duration // bound on a single Stripe call
	RateLimitPerMinute int
	CheckoutTopicARN   string // optional SNS topic for checkout events
	UseSecrets         bool
}

// LoadConfig reads the environment and, when AWS_USE_SECRETS=true, replaces the
// Stripe key with the value stored in Secrets Manager.
func LoadConfig(ctx context.Context) (*Config, error) {
	cfg, err := fromEnv()
	if err != nil {
		return nil, err
	}

	if cfg.UseSecrets {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		if err := cfg.applySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg)); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("PAYMENT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYMENT_TIMEOUT: %w", err)
	}
	perMinute, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	return &Config{
		Env:                getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "2222"),
		FrontendURL:        strings.TrimSuffix(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		StripeSecretKey:    strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		PaymentTimeout:     timeout,
		RateLimitPerMinute: perMinute,
		CheckoutTopicARN:   os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
		UseSecrets:         os.Getenv("AWS_USE_SECRETS") == "true",
	}, nil
}

func (c *Config) applySecrets(ctx context.Context, sm aws_pkg.SecretGetter) error {
	v, err := sm.GetSecret(ctx, stripeSecretName)
	if err != nil {
		return err
	}
	if v = strings.TrimSpace(v); v != "" {
		c.StripeSecretKey = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is not defined")
	}
	if c.PaymentTimeout <= 0 {
		return fmt.Errorf("PAYMENT_TIMEOUT must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
