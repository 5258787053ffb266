package routes

import (
	"github.com/labstack/echo/v4"

	"wanderpush/internal/handlers"
)

func SetupRoutes(api *echo.Group, h *handlers.NotificationHandler) {
	api.GET("/health", h.HealthCheck)

	// Producer surface
	notifications := api.Group("/notifications")
	notifications.POST("", h.CreateNotification)
	notifications.POST("/template", h.CreateFromTemplate)
	notifications.GET("/stats", h.GetStats)

	// Per-user projections and device tokens
	users := api.Group("/users")
	users.GET("/:id/notifications", h.GetUserNotifications)
	users.POST("/:id/tokens", h.RegisterToken)
	users.DELETE("/:id/tokens/:token", h.UnregisterToken)

	// Operator surface
	maintenance := api.Group("/maintenance")
	maintenance.POST("/token-cleanup", h.TokenCleanup)
}
