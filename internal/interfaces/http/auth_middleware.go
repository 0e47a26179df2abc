package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/makerforge/quote3d-api/internal/application/dto"
	"github.com/makerforge/quote3d-api/internal/domain/entity"
	"github.com/makerforge/quote3d-api/internal/domain/repository"
	"github.com/makerforge/quote3d-api/pkg/jwt"
)

// Locals keys que deja el middleware de auth.
const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
	LocalUser     = "currentUser"
)

// Rutas permitidas a cuentas aún no verificadas.
var unverifiedAllowed = []string{
	"/resend-verification",
	"/verify-email",
	"/logout",
}

// AuthMiddleware valida el token (Bearer header o cookie "token"), re-lee
// la cuenta y deja UserID y Role en c.Locals. Cuentas sin verificar solo
// pueden tocar las rutas de verificación y logout.
func AuthMiddleware(jwtSecret string, users repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			token = c.Cookies("token")
		}
		if token == "" {
			// El cliente websocket no puede mandar headers en el upgrade.
			token = c.Query("token")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("no autorizado para acceder a esta ruta"))
		}

		userID, _, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("token inválido o expirado"))
		}

		// Releer la cuenta: el rol y la verificación pueden haber cambiado
		// después de emitido el token.
		user, err := users.GetByID(userID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.Fail("no autorizado para acceder a esta ruta"))
		}
		if !user.IsVerified && !allowedUnverified(c.Path()) {
			return c.Status(fiber.StatusForbidden).JSON(dto.Fail("verifica tu email para acceder a esta ruta"))
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUserRole, user.Role)
		c.Locals(LocalUser, user)
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados (después de AuthMiddleware).
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetUserRole(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.Fail("tu rol no tiene acceso a esta ruta"))
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func allowedUnverified(path string) bool {
	for _, suffix := range unverifiedAllowed {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetUserRole devuelve el rol del contexto (después del middleware de auth).
func GetUserRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserRole).(string)
	return s
}

// GetUser devuelve la cuenta completa dejada por el middleware de auth.
func GetUser(c *fiber.Ctx) *entity.User {
	u, _ := c.Locals(LocalUser).(*entity.User)
	return u
}
