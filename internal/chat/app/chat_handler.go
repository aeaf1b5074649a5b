package app

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"social_network_service/internal/chat/domain"
	errprocess "social_network_service/pkg/err"
	"social_network_service/pkg/logger"
	"social_network_service/pkg/middlewares"
)

// ChatHandler exposes the room and message operations over REST
type ChatHandler struct {
	chatUC *ChatUseCase
}

// NewChatHandler create ChatHandler
func NewChatHandler(chatUC *ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUC: chatUC,
	}
}

func (h *ChatHandler) currentUserID(c *fiber.Ctx) (int64, bool) {
	userID, ok := c.Locals(middlewares.TokenUserID).(int64)
	return userID, ok
}

// CreateRoom
// @Summary create or reuse a chat room
// @Tags chat
// @Accept json
// @Produce json
// @Param request body domain.CreateChatRoomRequest true "room request"
// @Success 200 {object} domain.CommonResponse
// @Router /api/chat/rooms [post]
func (h *ChatHandler) CreateRoom(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, domain.ErrInvalidParameter)
	}

	var req domain.CreateChatRoomRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Log.Errorf("create room body parse error:", err)
		return h.fail(c, fiber.StatusBadRequest, domain.ErrInvalidParameter)
	}

	roomID, err := h.chatUC.CreateRoom(c.Context(), req, userID)
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(domain.NewSuccessResponse(fiber.Map{"room_id": roomID}))
}

// CheckExistingRoom
// @Summary find an active one-to-one room with another user
// @Tags chat
// @Produce json
// @Param userId path int true "other user id"
// @Success 200 {object} domain.CommonResponse
// @Router /api/chat/rooms/check/{userId} [get]
func (h *ChatHandler) CheckExistingRoom(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, domain.ErrInvalidParameter)
	}

	otherID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, domain.ErrInvalidParameter)
	}

	roomID, err := h.chatUC.CheckExistingRoom(c.Context(), userID, otherID)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(domain.NewSuccessResponse(fiber.Map{"room_id": roomID}))
}

// GetRooms
// @Summary list the caller's rooms, most recently active first
// @Tags chat
// @Produce json
// @Param page query int false "page number, zero based: page=0 returns the first page"
// @Param size query int false "page size"
// @Success 200 {object} domain.CommonResponse
// @Router /api/chat/rooms [get]
func (h *ChatHandler) GetRooms(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, domain.ErrInvalidParameter)
	}

	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)

	rooms, err := h.chatUC.GetRooms(c.Context(), userID, page, size)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(domain.NewSuccessResponse(rooms))
}

// GetMessages
// @Summary page through the visible messages of a room
// @Tags chat
// @Produce json
// @Param roomId path string true "room id"
// @Param page query int false "page number, zero based: page=0 returns the first page"
// @Param size query int false "page size"
// @Success 200 {object} domain.CommonResponse
// @Router /api/chat/rooms/{roomId}/messages [get]
func (h *ChatHandler) GetMessages(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, domain.ErrInvalidParameter)
	}

	roomID := c.Params("roomId")
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 50)

	messages, err := h.chatUC.GetMessages(c.Context(), userID, roomID, page, size)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(domain.NewSuccessResponse(messages))
}

// MarkAsRead
// @Summary reset the caller's unread counter in a room
// @Tags chat
// @Produce json
// @Param roomId path string true "room id"
// @Param messageId path string true "last read message id"
// @Success 200 {object} domain.CommonResponse
// @Router /api/chat/rooms/{roomId}/messages/{messageId}/read [post]
func (h *ChatHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, domain.ErrInvalidParameter)
	}

	roomID := c.Params("roomId")
	messageID := c.Params("messageId")

	if err := h.chatUC.MarkAsRead(c.Context(), userID, roomID, messageID); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(domain.NewSuccessResponse(nil))
}

// LeaveRoom
// @Summary leave a room, deleting it when the caller was the last active participant
// @Tags chat
// @Produce json
// @Param roomId path string true "room id"
// @Success 200 {object} domain.CommonResponse
// @Router /api/chat/rooms/{roomId} [delete]
func (h *ChatHandler) LeaveRoom(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, domain.ErrInvalidParameter)
	}

	roomID := c.Params("roomId")
	if err := h.chatUC.LeaveRoom(c.Context(), userID, roomID); err != nil {
		return h.fail(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(domain.NewSuccessResponse(nil))
}

func (h *ChatHandler) fail(c *fiber.Ctx, status int, err error) error {
	logger.Log.Error("chat request failed",
		zap.String("path", c.Path()),
		zap.String("err", err.Error()),
	)
	return c.Status(status).JSON(domain.NewErrorResponse(errprocess.CodeOf(err), err.Error()))
}
