package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/household/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted on the engine.
type Handlers struct {
	Ledger  *handlers.LedgerHandler
	Tools   *handlers.ToolsHandler
	Webhook *handlers.WebhookHandler
}

// New wires the Gin engine with the routes and middlewares.
func New(h Handlers, logger *zap.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if h.Ledger != nil {
		r.GET("/dashboard", h.Ledger.Dashboard)

		r.GET("/deliveries", h.Ledger.ListDeliveries)
		r.POST("/deliveries", h.Ledger.CreateDelivery)
		r.PUT("/deliveries/:id", h.Ledger.UpdateDelivery)
		r.DELETE("/deliveries/:id", h.Ledger.DeleteDelivery)

		r.GET("/payments", h.Ledger.ListPayments)
		r.POST("/payments", h.Ledger.CreatePayment)
		r.PUT("/payments/:id", h.Ledger.UpdatePayment)
		r.DELETE("/payments/:id", h.Ledger.DeletePayment)

		r.POST("/settlements", h.Ledger.Settle)

		r.GET("/rates", h.Ledger.GetRates)
		r.PUT("/rates", h.Ledger.UpdateRates)

		r.DELETE("/items/:item", h.Ledger.PurgeItem)
	}

	if h.Tools != nil {
		r.POST("/reminders", h.Tools.Reminders)
		r.GET("/uploads/auth", h.Tools.UploadAuth)
		r.GET("/statement.xlsx", h.Tools.DownloadStatement)
		r.POST("/statement/export", h.Tools.ExportStatement)
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/send-message", h.Webhook.SendMessage)
	}

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	return r, nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
