package router

import "github.com/gin-gonic/gin"

func (r *Router) customerRoutes(version *gin.RouterGroup) {
	customers := version.Group("/customer")
	{
		// Every customer route requires a token
		customers.Use(r.authMw.RequireAuth())
		{
			customers.GET("/", r.customerHandler.List)
			customers.POST("/", r.customerHandler.Create)

			customers.GET("/:id", r.customerHandler.Get)
			customers.PUT("/:id", r.customerHandler.Update)
			customers.PATCH("/:id", r.customerHandler.Update)
			customers.DELETE("/:id", r.customerHandler.Delete)
		}
	}
}
