package routes_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yashrajoria/checkout-service/controllers"
	"github.com/yashrajoria/checkout-service/models"
	"github.com/yashrajoria/checkout-service/routes"
	"github.com/yashrajoria/checkout-service/services"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGateway struct {
	sessionID string
	err       error
}

func (g stubGateway) CreateCheckoutSession(context.Context, models.CheckoutSessionRequest) (string, error) {
	return g.sessionID, g.err
}

func newRouter(gw services.PaymentGateway) *gin.Engine {
	logger := zap.NewNop()
	svc := services.NewCheckoutService(gw, "http://localhost:5173", time.Second, nil, nil, "", logger)
	return routes.NewRouter(controllers.NewOrderController(svc), routes.Options{
		Logger:             logger,
		FrontendURL:        "http://localhost:5173",
		RateLimitPerMinute: 100,
	})
}

const validBody = `{"items":[{"id":"1","name":"Widget","price":19.99,"quantity":2}],"address":"12 Main St"}`

func TestRouter_Health(t *testing.T) {
	r := newRouter(stubGateway{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"error":false}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_OrderSuccess(t *testing.T) {
	r := newRouter(stubGateway{sessionID: "sess_abc"})

	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString(validBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"id":"sess_abc"}`, w.Body.String())
}

func TestRouter_RemoteFailureGoesThroughGlobalHandler(t *testing.T) {
	r := newRouter(stubGateway{err: errors.New("stripe unreachable")})

	req := httptest.NewRequest(http.MethodPost, "/order", bytes.NewBufferString(validBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal Server Error. Please try again later."}`, w.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	r := newRouter(stubGateway{})

	req := httptest.NewRequest(http.MethodOptions, "/order", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
