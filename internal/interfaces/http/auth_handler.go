package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/auth"
	"github.com/makerforge/quote3d-api/internal/application/dto"
)

// AuthHandler maneja registro, verificación de email y sesión.
type AuthHandler struct {
	uc               *auth.AuthUseCase
	cookieExpireDays int
	secureCookie     bool
}

// NewAuthHandler construye el handler. secureCookie debe ser true en producción.
func NewAuthHandler(uc *auth.AuthUseCase, cookieExpireDays int, secureCookie bool) *AuthHandler {
	return &AuthHandler{uc: uc, cookieExpireDays: cookieExpireDays, secureCookie: secureCookie}
}

// Register crea la cuenta y dispara el email de verificación.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.Register(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OKMessage(out, "revisa tu email para verificar la cuenta"))
}

// VerifyEmail valida el código y abre sesión (la verificación cuenta como
// primer login).
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	out, err := h.uc.VerifyEmail(c.Params("code"))
	if err != nil {
		return respondError(c, err)
	}
	return h.sendTokenResponse(c, fiber.StatusOK, out)
}

// ResendVerification reemite el código para una cuenta sin verificar.
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var in dto.ResendVerificationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.ResendVerification(in.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OKMessage(out, "revisa tu email para verificar la cuenta"))
}

// Login valida credenciales y abre sesión.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.Login(in)
	if err != nil {
		return respondError(c, err)
	}
	return h.sendTokenResponse(c, fiber.StatusOK, out)
}

// Logout limpia la cookie de sesión.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
	})
	return c.JSON(dto.OKMessage(nil, "sesión cerrada"))
}

// Me devuelve la cuenta autenticada.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.GetMe(GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// UpdateDetails actualiza los datos de perfil de la cuenta autenticada.
func (h *AuthHandler) UpdateDetails(c *fiber.Ctx) error {
	var in dto.UpdateDetailsRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.UpdateDetails(GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.OK(out))
}

// UpdatePassword cambia la contraseña re-verificando la actual y rota el token.
func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var in dto.UpdatePasswordRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail("cuerpo inválido"))
	}
	out, err := h.uc.UpdatePassword(GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return h.sendTokenResponse(c, fiber.StatusOK, out)
}

// sendTokenResponse escribe el token en el body y en una cookie HTTP-only.
func (h *AuthHandler) sendTokenResponse(c *fiber.Ctx, status int, out *dto.TokenResponse) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    out.Token,
		Expires:  time.Now().Add(time.Duration(h.cookieExpireDays) * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookie,
	})
	return c.Status(status).JSON(dto.OK(out))
}
