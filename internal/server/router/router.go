package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/breakeven/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares. webhook may
// be nil when the WhatsApp bot is disabled.
func New(api *handlers.BepHandler, webhook *handlers.WebhookHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	restaurants := r.Group("/api/restaurants/:restaurantID")
	restaurants.GET("/config", api.GetConfig)
	restaurants.PUT("/config", api.PutConfig)
	restaurants.GET("/breakeven", api.BreakEven)
	restaurants.GET("/mix/validation", api.MixValidation)
	restaurants.PUT("/categories/:categoryID", api.PutCategory)
	restaurants.POST("/pricing", api.Price)
	restaurants.POST("/fixed-costs", api.AddFixedCost)
	restaurants.DELETE("/fixed-costs/:id", api.RemoveFixedCost)

	if webhook != nil {
		r.GET("/webhook", webhook.Verify)
		r.POST("/webhook", webhook.Receive)
		r.POST("/send-message", webhook.SendMessage)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info("router initialized", zap.Bool("webhook", webhook != nil))

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
