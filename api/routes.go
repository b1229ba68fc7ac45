package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/warmuphero/warmstack/api/handlers"
	"github.com/warmuphero/warmstack/api/middleware"
	"github.com/warmuphero/warmstack/internal/repository"
	"github.com/warmuphero/warmstack/internal/tracing"
	"github.com/warmuphero/warmstack/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Health check endpoint (no custom context needed)
	r.GET("/health", handlers.HealthCheck)

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-WARMSTACK-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.CustomContextMiddleware("warmstack"))
	api.Use(middleware.TracingMiddleware())
	{
		// Warmup cycle triggers
		warmup := api.Group("/warmup")
		{
			warmup.POST("/send", handlers.TriggerSendCycle(s.WarmupService))
			warmup.POST("/check", handlers.TriggerRescueCycle(s.WarmupService))
		}

		// Account management
		accounts := api.Group("/accounts")
		{
			accounts.GET("", handlers.ListAccounts(repos))
			accounts.POST("", handlers.CreateAccount(repos, s.CredentialVault))
			accounts.POST("/:id/reactivate", handlers.ReactivateAccount(repos))
		}

		// Dashboard data
		api.GET("/logs", handlers.ListRecentActivity(repos))
		api.GET("/stats", handlers.GetWarmupStats(repos))
	}
}
