package middleware

import (
	"fmt"

	apimodels "marketplace-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

// WithBodyLimit отклоняет запросы с телом больше limit кодом 413
func WithBodyLimit(limit int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		size := int64(c.Request().Header.ContentLength())
		if size <= 0 {
			size = int64(len(c.Body()))
		}
		if size > limit {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(apimodels.NewError(
				fmt.Sprintf("Размер запроса превышает допустимый: %d байт", limit)))
		}
		return c.Next()
	}
}
