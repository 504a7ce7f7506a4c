package middleware

import (
	"marketplace-backend/lib/rbac"
	"marketplace-backend/models"
	apimodels "marketplace-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

// KindPermission проверка права роли на вид сущности из параметра пути :kind
func KindPermission(permission models.Permission) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		role := GetUserRole(ctx)
		if GetUserID(ctx) == "" || role == "" {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewCodedError("RBAC_FORBIDDEN", "операция недоступна"))
		}
		kind := models.EntityKind(ctx.Params("kind"))
		if !kind.IsValid() {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("неизвестный вид сущности"))
		}
		if !rbac.Instance.Allowed(role, kind, permission) {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewCodedError("RBAC_FORBIDDEN", "операция недоступна"))
		}
		return ctx.Next()
	}
}
