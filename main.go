package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yashrajoria/checkout-service/config"
	"github.com/yashrajoria/checkout-service/controllers"
	"github.com/yashrajoria/checkout-service/logger"
	aws_pkg "github.com/yashrajoria/checkout-service/pkg/aws"
	"github.com/yashrajoria/checkout-service/routes"
	"github.com/yashrajoria/checkout-service/services"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Fatalf("[CheckoutService] Failed to load config: %v", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// AWS is optional: without it there is no log shipping, metrics or events.
	var (
		metricsClient *aws_pkg.MetricsClient
		snsClient     aws_pkg.SNSPublisher
	)
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)
	if awsErr == nil {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, "checkout-service")
		if err == nil && cwLogs.IsEnabled() {
			logger.InitializeWithWriter(cfg.Env, cwLogs)
		} else {
			logger.Initialize(cfg.Env)
			if err != nil {
				logger.Log.Warn("CloudWatch Logs unavailable", zap.Error(err))
			}
		}
		metricsClient = aws_pkg.NewMetricsClient(awsCfg)
		if cfg.CheckoutTopicARN != "" {
			snsClient = aws_pkg.NewSNSClient(awsCfg)
		}
	} else {
		logger.Initialize(cfg.Env)
		logger.Log.Warn("AWS config unavailable, metrics and events disabled", zap.Error(awsErr))
	}
	defer logger.Sync()

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.PaymentTimeout)
	checkoutSvc := services.NewCheckoutService(
		stripeSvc,
		cfg.FrontendURL,
		cfg.PaymentTimeout,
		metricsClient,
		snsClient,
		cfg.CheckoutTopicARN,
		logger.Log,
	)
	orderController := controllers.NewOrderController(checkoutSvc)

	r := routes.NewRouter(orderController, routes.Options{
		Logger:             logger.Log,
		FrontendURL:        cfg.FrontendURL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Metrics:            metricsClient,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Log.Info("Server running",
		zap.String("port", cfg.Port),
		zap.String("frontend_url", cfg.FrontendURL),
	)
	<-quit
	logger.Log.Info("Shutting down checkout service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Log.Info("Server exited cleanly")
}
