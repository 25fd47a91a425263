package router

import "github.com/gin-gonic/gin"

func (r *Router) authRoutes(version *gin.RouterGroup) {
	auth := version.Group("/auth")
	{
		// Public routes
		auth.POST("/login/", r.authHandler.Login)
		auth.POST("/register/", r.authHandler.Register)

		protected := auth.Group("")
		protected.Use(r.authMw.RequireAuth())
		{
			protected.POST("/logout/", r.authHandler.Logout)
		}
	}
}
