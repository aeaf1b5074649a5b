package router

import (
	"social_network_service/internal/notification/app"
	"social_network_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes register notification routes
func RegisterRoutes(r *fiber.App, notifHandler *app.NotificationHandler) {
	notif := r.Group("/api/notifications", middlewares.JWTMiddleware())

	notif.Post("/tokens", notifHandler.RegisterDeviceToken)
	notif.Delete("/tokens/:token", notifHandler.RemoveDeviceToken)
	notif.Get("/", notifHandler.GetNotifications)
	notif.Get("/unread", notifHandler.HasUnread)
	notif.Post("/:id/read", notifHandler.MarkAsRead)
	notif.Delete("/:id", notifHandler.Delete)
	notif.Delete("/", notifHandler.DeleteAll)
}
