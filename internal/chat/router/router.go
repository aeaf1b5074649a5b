package router

import (
	"context"

	"social_network_service/internal/chat/app"
	"social_network_service/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes register chat routes
func RegisterRoutes(r *fiber.App, chatHandler *app.ChatHandler, chatWebsocket *app.ChatWebsocketHandler) {
	chat := r.Group("/api/chat", middlewares.JWTMiddleware())

	chat.Post("/rooms", chatHandler.CreateRoom)
	chat.Get("/rooms", chatHandler.GetRooms)
	chat.Get("/rooms/check/:userId", chatHandler.CheckExistingRoom)
	chat.Get("/rooms/:roomId/messages", chatHandler.GetMessages)
	chat.Post("/rooms/:roomId/messages/:messageId/read", chatHandler.MarkAsRead)
	chat.Delete("/rooms/:roomId", chatHandler.LeaveRoom)

	chat.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(context.Background(), c)
	}))
}
