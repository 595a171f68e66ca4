package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"boampwatch/platform/config"
	"boampwatch/platform/httpkit"
	"boampwatch/platform/logger"
)

// NewRouter builds the admin engine: health at the root, the run and scan
// endpoints under /api/v1, with the shared middleware stack.
func NewRouter(cfg config.HTTPConfig, handler *Handler, log *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(log))
	engine.Use(httpkit.SecurityHeaders())

	if origins := cfg.GetCORSOrigins(); len(origins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			MaxAge:           12 * time.Hour,
			AllowCredentials: false,
		}))
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Health stays open; the admin endpoints are rate limited per client IP.
	limiter := httpkit.NewIPRateLimiter(rate.Limit(5), 10, log)
	v1 := engine.Group("/api/v1")
	v1.Use(limiter.RateLimit())
	handler.RegisterRoutes(v1)

	return engine
}
