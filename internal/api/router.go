package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/signupd/internal/app"
	"github.com/charlesng35/signupd/internal/handlers"
	"github.com/charlesng35/signupd/internal/middleware"
	"github.com/charlesng35/signupd/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers the
// registration routes.
func NewRouter(svc *services.RegistrationService, db *gorm.DB, cfg *app.Config) (*gin.Engine, error) {
	if svc == nil {
		return nil, fmt.Errorf("registration service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	policy := handlers.PasswordPolicy{
		MinLength:    cfg.Password.MinLength,
		RequireUpper: cfg.Password.RequireUpper,
		RequireLower: cfg.Password.RequireLower,
		RequireDigit: cfg.Password.RequireDigit,
	}
	regHandler, err := handlers.NewRegistrationHandler(svc, policy)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	{
		api.POST("/register", regHandler.Register)
		api.POST("/activate", regHandler.Activate)
	}

	if cfg.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health(db))
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
