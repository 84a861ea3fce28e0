package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/checkout-service/logger"
	"github.com/yashrajoria/checkout-service/middleware"
	"github.com/yashrajoria/checkout-service/models"
	"github.com/yashrajoria/checkout-service/services"
	"go.uber.org/zap"
)

const outcomeSessionCreated = "session_created"

// OrderController handles checkout requests from the storefront.
type OrderController struct {
	checkoutService services.CheckoutService
}

func NewOrderController(svc services.CheckoutService) *OrderController {
	return &OrderController{checkoutService: svc}
}

// CreateOrder handles POST /order
func (oc *OrderController) CreateOrder(ctx *gin.Context) {
	var req models.OrderRequest
	// Only a body that is not a JSON object fails here; field types are
	// checked by the service in validation order. An empty body is an empty
	// cart.
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn(ctx.Request.Context(), "Malformed checkout body", zap.Error(err))
		respondCheckoutError(ctx, services.InvalidBodyError(err))
		return
	}

	sessionID, cerr := oc.checkoutService.CreateOrder(ctx.Request.Context(), &req)
	if cerr != nil {
		respondCheckoutError(ctx, cerr)
		return
	}

	ctx.Set(middleware.OutcomeKey, outcomeSessionCreated)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "id": sessionID})
}

// respondCheckoutError answers client errors directly and leaves everything
// else to the global error handler.
func respondCheckoutError(ctx *gin.Context, cerr *services.CheckoutError) {
	ctx.Set(middleware.OutcomeKey, string(cerr.Kind))
	if cerr.IsClientError() {
		ctx.JSON(cerr.StatusCode(), gin.H{"success": false, "message": cerr.Message})
		return
	}
	_ = ctx.Error(cerr)
}
