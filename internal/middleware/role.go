package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bharatcare/claims-backend/internal/dto"
	"github.com/bharatcare/claims-backend/internal/models"
)

// RoleRequired rejects requests whose resolved user holds none of the
// given roles. Must run after LoadCurrentUser.
func RoleRequired(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		if !allowed[user.Role] {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Insufficient role",
			})
		}
		return c.Next()
	}
}
