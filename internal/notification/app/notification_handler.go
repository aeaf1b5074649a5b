package app

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	chatdomain "social_network_service/internal/chat/domain"
	"social_network_service/internal/notification/domain"
	errprocess "social_network_service/pkg/err"
	"social_network_service/pkg/logger"
	"social_network_service/pkg/middlewares"
)

// NotificationHandler REST surface of the notification feed and device tokens
type NotificationHandler struct {
	notifUC *NotificationUseCase
}

// NewNotificationHandler create NotificationHandler
func NewNotificationHandler(notifUC *NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notifUC: notifUC,
	}
}

func (h *NotificationHandler) currentUserID(c *fiber.Ctx) (int64, bool) {
	userID, ok := c.Locals(middlewares.TokenUserID).(int64)
	return userID, ok
}

// RegisterDeviceToken
// @Summary register a device token for push delivery
// @Tags notification
// @Accept json
// @Produce json
// @Param request body domain.DeviceTokenRequest true "device token"
// @Success 200 {object} chatdomain.CommonResponse
// @Router /api/notifications/tokens [post]
func (h *NotificationHandler) RegisterDeviceToken(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, chatdomain.ErrInvalidParameter)
	}

	var req domain.DeviceTokenRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return h.fail(c, fiber.StatusBadRequest, chatdomain.ErrInvalidParameter)
	}

	if err := h.notifUC.RegisterDeviceToken(c.Context(), userID, req); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(chatdomain.NewSuccessResponse(nil))
}

// RemoveDeviceToken
// @Summary deactivate a device token
// @Tags notification
// @Produce json
// @Param token path string true "device token"
// @Success 200 {object} chatdomain.CommonResponse
// @Router /api/notifications/tokens/{token} [delete]
func (h *NotificationHandler) RemoveDeviceToken(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, chatdomain.ErrInvalidParameter)
	}

	token := c.Params("token")
	if token == "" {
		return h.fail(c, fiber.StatusBadRequest, chatdomain.ErrInvalidParameter)
	}

	if err := h.notifUC.RemoveDeviceToken(c.Context(), userID, token); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(chatdomain.NewSuccessResponse(nil))
}

// GetNotifications
// @Summary page through the caller's notification feed
// @Tags notification
// @Produce json
// @Param page query int false "page number, zero based: page=0 returns the first page"
// @Param size query int false "page size"
// @Success 200 {object} chatdomain.CommonResponse
// @Router /api/notifications [get]
func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, chatdomain.ErrInvalidParameter)
	}

	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 20)

	records, err := h.notifUC.GetNotifications(c.Context(), userID, page, size)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(chatdomain.NewSuccessResponse(records))
}

// MarkAsRead
// @Summary mark one feed entry read
// @Tags notification
// @Produce json
// @Param id path int true "notification id"
// @Success 200 {object} chatdomain.CommonResponse
// @Router /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, chatdomain.ErrInvalidParameter)
	}

	notificationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, chatdomain.ErrInvalidParameter)
	}

	if err := h.notifUC.MarkAsRead(c.Context(), userID, notificationID); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(chatdomain.NewSuccessResponse(nil))
}

// HasUnread
// @Summary report whether the caller has unread notifications
// @Tags notification
// @Produce json
// @Success 200 {object} chatdomain.CommonResponse
// @Router /api/notifications/unread [get]
func (h *NotificationHandler) HasUnread(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, chatdomain.ErrInvalidParameter)
	}

	unread, err := h.notifUC.HasUnread(c.Context(), userID)
	if err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(chatdomain.NewSuccessResponse(fiber.Map{"has_unread": unread}))
}

// Delete
// @Summary remove one feed entry
// @Tags notification
// @Produce json
// @Param id path int true "notification id"
// @Success 200 {object} chatdomain.CommonResponse
// @Router /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, chatdomain.ErrInvalidParameter)
	}

	notificationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return h.fail(c, fiber.StatusBadRequest, chatdomain.ErrInvalidParameter)
	}

	if err := h.notifUC.Delete(c.Context(), userID, notificationID); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(chatdomain.NewSuccessResponse(nil))
}

// DeleteAll
// @Summary clear the caller's feed
// @Tags notification
// @Produce json
// @Success 200 {object} chatdomain.CommonResponse
// @Router /api/notifications [delete]
func (h *NotificationHandler) DeleteAll(c *fiber.Ctx) error {
	userID, ok := h.currentUserID(c)
	if !ok {
		return h.fail(c, fiber.StatusUnauthorized, chatdomain.ErrInvalidParameter)
	}

	if err := h.notifUC.DeleteAll(c.Context(), userID); err != nil {
		return h.fail(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(chatdomain.NewSuccessResponse(nil))
}

func (h *NotificationHandler) fail(c *fiber.Ctx, status int, err error) error {
	logger.Log.Error("notification request failed",
		zap.String("path", c.Path()),
		zap.String("err", err.Error()),
	)
	return c.Status(status).JSON(chatdomain.NewErrorResponse(errprocess.CodeOf(err), err.Error()))
}
