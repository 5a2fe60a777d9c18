package app

import (
	"net/http"

	"github.com/dfworx/auth-service/config"
	"github.com/dfworx/auth-service/internal/account"
	"github.com/dfworx/auth-service/internal/health"
	"github.com/dfworx/auth-service/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

const (
	serviceName    = "auth-service"
	serviceVersion = "0.1.0"
)

// NewRouter wires the HTTP surface: public health/banner routes and the
// /api/auth group, wrapped in CORS.
func NewRouter(cfg *config.Config, c *Container) (http.Handler, error) {
	svc, err := c.Account.Load()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(c.Logger))
	r.Use(middleware.RequestTimeout(cfg.RequestTimeout()))

	// Public
	healthHandler := health.NewHealthHandler(serviceName)
	r.GET("/health", healthHandler.Check)
	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"service": cfg.App.Name,
			"version": serviceVersion,
			"env":     cfg.App.Environment,
		})
	})

	accountHandler := account.NewHandler(svc, c.Logger)
	accountHandler.RegisterRoutes(r.Group("/api/auth"), middleware.AuthMiddleware(svc))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
	})
	return corsHandler.Handler(r), nil
}
