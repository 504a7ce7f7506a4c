package middleware

import (
	authutils "marketplace-backend/lib/utils/auth-utils"
	"marketplace-backend/models"
	apimodels "marketplace-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

func GetUserID(ctx *fiber.Ctx) string {
	claims := authutils.GetClaims(ctx)
	if sub, ok := claims["sub"].(string); ok {
		return sub
	}
	return ""
}

func GetUserRole(ctx *fiber.Ctx) models.UserRole {
	claims := authutils.GetClaims(ctx)
	if role, ok := claims["role"].(string); ok {
		return models.UserRole(role)
	}
	return ""
}

func GetPrincipal(ctx *fiber.Ctx) models.Principal {
	return models.Principal{
		UserID: GetUserID(ctx),
		Role:   GetUserRole(ctx),
	}
}

// StaffRequired доступ только для сотрудников площадки
func StaffRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		if GetUserID(ctx) == "" || !GetUserRole(ctx).IsStaff() {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("операция недоступна"))
		}
		return ctx.Next()
	}
}
