package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/payment-gateway/internal/api_gateway/handler"
	"github.com/payment-gateway/internal/api_gateway/middleware"
	"github.com/payment-gateway/internal/platform/metrics"
)

// setupRouter configures API routes and middleware for the application.
// CorrelationID runs before Logger so access logs carry the request's ID.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	m *metrics.Metrics,
	paymentHandler *handler.PaymentHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		payments := v1.Group("/payments")
		{
			payments.POST("/initiate", paymentHandler.Initiate)
			payments.GET("/status/:id", paymentHandler.GetStatus)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	r.GET("/metrics", gin.WrapH(m.Handler()))
}
