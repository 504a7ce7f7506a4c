package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace-backend/lib/rbac"
	authutils "marketplace-backend/lib/utils/auth-utils"
	"marketplace-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp() *fiber.App {
	rbac.NewHandler()
	app := fiber.New()
	app.Use(authorization(testSecret))
	app.Get("/staff", StaffRequired(), func(ctx *fiber.Ctx) error {
		return ctx.SendString(GetUserID(ctx))
	})
	app.Get("/kind/:kind", KindPermission(models.ReviewPermission), func(ctx *fiber.Ctx) error {
		return ctx.SendString(string(GetPrincipal(ctx).Role))
	})
	return app
}

func request(t *testing.T, app *fiber.App, path string, role models.UserRole) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if role != "" {
		token, err := authutils.SignToken(testSecret, "user-1", "Тест", role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthorization(t *testing.T) {
	app := newTestApp()
	t.Run("без токена", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, request(t, app, "/staff", ""))
	})
	t.Run("токен с чужой подписью", func(t *testing.T) {
		token, err := authutils.SignToken("other", "user-1", "Тест", models.UserRoleAdmin, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
	t.Run("сотрудник", func(t *testing.T) {
		require.Equal(t, http.StatusOK, request(t, app, "/staff", models.UserRoleModerator))
	})
	t.Run("не сотрудник", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, request(t, app, "/staff", models.UserRoleFarmer))
	})
}

func TestKindPermission(t *testing.T) {
	app := newTestApp()
	t.Run("модератор согласует видео", func(t *testing.T) {
		require.Equal(t, http.StatusOK, request(t, app, "/kind/video", models.UserRoleModerator))
	})
	t.Run("модератор не согласует такси", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, request(t, app, "/kind/taxi_vehicle", models.UserRoleModerator))
	})
	t.Run("неизвестный вид", func(t *testing.T) {
		require.Equal(t, http.StatusNotFound, request(t, app, "/kind/spaceship", models.UserRoleAdmin))
	})
}

func TestWithBodyLimit(t *testing.T) {
	app := fiber.New()
	app.Post("/", WithBodyLimit(8), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(http.StatusOK)
	})
	t.Run("в пределах лимита", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("12345678"))))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
	t.Run("больше лимита", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("123456789"))))
		require.NoError(t, err)
		require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})
}
