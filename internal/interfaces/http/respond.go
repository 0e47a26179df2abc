package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/domain"
)

// statusFor mapea los sentinels de dominio a códigos HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrEmailNotVerified):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrEmailAlreadyExists),
		errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrInvalidOrExpiredCode),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientHours),
		errors.Is(err, domain.ErrInvalidGateway),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrPaymentIncomplete),
		errors.Is(err, domain.ErrDuplicatePayment),
		errors.Is(err, domain.ErrLastActiveRate):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrUpstream):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// respondError escribe el sobre uniforme de error. Los errores internos no
// exponen detalle al cliente; el detalle queda en el log del handler.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno del servidor"
	}
	return c.Status(status).JSON(dto.Fail(msg))
}
