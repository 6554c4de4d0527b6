// Package api wires the dashboard handlers, metrics and Swagger UI onto
// the router.
// @title Engagement Dashboard API
// @version 1.0
// @description Filter social media usage records and compute dashboard aggregates.
// @BasePath /api/v1
package api

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"engagement-dashboard/internal/api/docs"
	"engagement-dashboard/internal/api/handler"
	"engagement-dashboard/internal/metrics"
	"engagement-dashboard/internal/session"
	"engagement-dashboard/pkg/router"
)

// NewRouter builds the router serving s.
func NewRouter(s *session.Session) *router.Router {
	r := router.New()
	r.Observe = metrics.RecordAPIRequest
	RegisterRoutes(r, handler.New(s))
	return r
}

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.GET("/api/v1/health", h.Health)
	r.GET("/api/v1/options", h.Options)
	r.POST("/api/v1/dashboard", h.Dashboard)
	r.POST("/api/v1/aggregate", h.Aggregate)
	r.GET("/api/v1/load-report", h.LoadReport)

	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"), httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName())))
}
