package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/checkout-service/controllers"
	"github.com/yashrajoria/checkout-service/middleware"
	"github.com/yashrajoria/checkout-service/services"
	"go.uber.org/zap"
)

const serviceName = "checkout-service"

type Options struct {
	Logger             *zap.Logger
	FrontendURL        string // only origin allowed by CORS
	RateLimitPerMinute int
	Metrics            middleware.HTTPMetrics // may be nil
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(oc *controllers.OrderController, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Recovery(opts.Logger, services.MsgInternal))
	r.Use(middleware.MetricsMiddleware(opts.Metrics, serviceName))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{opts.FrontendURL},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler(opts.Logger, services.MsgInternal))

	RegisterCheckoutRoutes(r, oc, opts.RateLimitPerMinute)
	return r
}

// RegisterCheckoutRoutes sets up the health check and the checkout endpoint.
func RegisterCheckoutRoutes(r *gin.Engine, oc *controllers.OrderController, rateLimitPerMinute int) {
	r.GET("/", controllers.Health)
	r.POST("/order", middleware.RateLimitMiddleware(rateLimitPerMinute), oc.CreateOrder)
}
