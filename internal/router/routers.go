package router

import (
	"time"

	"github.com/Payphone-Digital/customer-service/config"
	"github.com/Payphone-Digital/customer-service/internal/handler"
	"github.com/Payphone-Digital/customer-service/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authHandler     *handler.AuthHandler
	customerHandler *handler.CustomerHandler
	healthHandler   *handler.HealthHandler

	authMw *middleware.TokenAuthMiddleware
	Config *config.Config
}

func NewRouter(
	auth *handler.AuthHandler,
	customer *handler.CustomerHandler,
	health *handler.HealthHandler,

	authMw *middleware.TokenAuthMiddleware,
	config *config.Config,
) *Router {
	return &Router{
		authHandler:     auth,
		customerHandler: customer,
		healthHandler:   health,

		authMw: authMw,
		Config: config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.ContextMiddleware(r.Config.App.Timeout))
	router.Use(middleware.ContextValidationMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.RequestResponseMiddleware())
	router.Use(middleware.SecurityLoggingMiddleware())
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.HealthCheck)

		v1 := api.Group("/v1")
		{
			v1.Use(middleware.RateLimit(r.Config.RateLimit.Request, time.Duration(r.Config.RateLimit.Duration)*time.Second))

			r.authRoutes(v1)
			r.customerRoutes(v1)
		}
	}

	return router
}
