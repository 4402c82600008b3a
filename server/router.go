// Package server exposes the pipeline over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/maastricht-university/meeting-clarity/observe"
)

type RouterConfig struct {
	// MaxUploadBytes caps the whole request body of an upload. Larger
	// uploads are rejected with 413.
	MaxUploadBytes int64
	// Metrics, when set, is served at GET /metrics.
	Metrics http.Handler
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler, m *observe.Metrics, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(m))
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}
	SetupRoutes(r, h, cfg)
	return r
}

func SetupRoutes(router *gin.Engine, h *Handler, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	api := router.Group("/api")
	{
		api.POST("/analyze", limitBody(cfg.MaxUploadBytes), h.Analyze)
		api.POST("/score", h.Score)
		api.GET("/history/:owner", h.History)
		api.GET("/meetings/:id", h.Meeting)
	}
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

func requestLogger(m *observe.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		d := time.Since(start)
		m.RecordHTTP(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), d)
		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"route":    route,
			"status":   c.Writer.Status(),
			"duration": d,
		}).Debug("request")
	}
}
