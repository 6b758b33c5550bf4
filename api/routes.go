package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nametracker/nametracker/api/middleware"
	"github.com/nametracker/nametracker/api/rest/handlers"
	"github.com/nametracker/nametracker/internal/repository"
	"github.com/nametracker/nametracker/internal/tracing"
	"github.com/nametracker/nametracker/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// setup handlers
	domainHandler := handlers.NewDomainHandler(repos)
	ideaHandler := handlers.NewIdeaHandler(repos)

	// Health, status and metrics endpoints (no auth)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/status", handlers.Status(repos))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-NAMETRACKER-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.TracingMiddleware())
	{
		domains := api.Group("/domains")
		{
			domains.GET("", domainHandler.List())
			domains.POST("", domainHandler.Register())
			domains.GET("/:name", domainHandler.Get())
		}

		archive := api.Group("/archive")
		{
			archive.GET("", domainHandler.ListArchived())
		}

		idea := api.Group("/idea")
		{
			idea.GET("", ideaHandler.Latest())
			idea.GET("/:date", ideaHandler.ForDate())
		}
	}
}
