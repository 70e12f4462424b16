package routes

import (
	"rocket-food-delivery/handlers"
	"rocket-food-delivery/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/login", handlers.Login)

		public.GET("/restaurants", handlers.ListRestaurants)
		public.GET("/products", handlers.ListProducts)

		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Session routes ─────────────────────────────────────────────
	// The app identifies itself by role id; a bearer token is checked
	// when sent and required only when configured.
	session := r.Group("/api")
	session.Use(middleware.SessionToken())
	{
		session.POST("/orders", handlers.CreateOrder)
		session.GET("/orders", handlers.ListOrders)
		session.POST("/order/:id/status", handlers.UpdateOrderStatus)

		session.GET("/account/:id", handlers.GetAccount)
		session.POST("/account/:id", handlers.UpdateAccount)
	}
}
