package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/application/notification"
)

// NotificationHandler maneja la bandeja de avisos del usuario.
type NotificationHandler struct {
	uc *notification.NotificationUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *notification.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// List devuelve las notificaciones del usuario autenticado.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKCount(out, len(out)))
}

// MarkRead marca una notificación como leída.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	out, err := h.uc.MarkRead(GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// Delete elimina una notificación.
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKMessage(nil, "notificación eliminada"))
}
