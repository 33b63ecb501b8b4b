package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterConfig holds the HTTP-level settings.
type RouterConfig struct {
	UploadsDir   string
	MaxBodyBytes int64
	Metrics      bool
}

// NewRouter builds the gin engine serving the press-kit endpoint, the
// static press-kit files and the metrics page.
func NewRouter(cfg RouterConfig, h *Handlers, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(log), AccessLog(), Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	presskit := r.Group("/api/presskit")
	{
		presskit.GET("", h.Health)
		presskit.POST("", BodyLimit(cfg.MaxBodyBytes), h.Submit)
	}

	if cfg.UploadsDir != "" {
		r.Static("/uploads", cfg.UploadsDir)
	}
	if cfg.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	return r
}
