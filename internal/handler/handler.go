package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves operational endpoints that are not tied to a resource
type Handler struct {
	registry *prometheus.Registry
}

// NewHandler creates a new handler instance
func NewHandler(registry *prometheus.Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
