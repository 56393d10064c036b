package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/salal-stock/internal/application/dto"
	"github.com/jhoicas/salal-stock/internal/domain/entity"
)

// Cabeceras de identidad puestas por el gateway de autenticación.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
)

// Locals key para la identidad en Fiber.
const LocalIdentity = "identity"

// IdentityMiddleware exige X-User-Id y deja la identidad en c.Locals.
func IdentityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_IDENTITY", Message: HeaderUserID + " requerido"})
		}
		userName := strings.TrimSpace(c.Get(HeaderUserName))
		if userName == "" {
			userName = userID
		}
		c.Locals(LocalIdentity, entity.Identity{UserID: userID, UserName: userName})
		return c.Next()
	}
}

// GetIdentity devuelve la identidad del contexto (después de IdentityMiddleware).
func GetIdentity(c *fiber.Ctx) entity.Identity {
	id, _ := c.Locals(LocalIdentity).(entity.Identity)
	return id
}
