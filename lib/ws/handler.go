package ws

import (
	wsclient "marketplace-backend/lib/ws/client"
	connectionhub "marketplace-backend/lib/ws/hub/connection-hub"
	"marketplace-backend/middleware"
	"marketplace-backend/models"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func InitWs(app *fiber.App) {
	app.Use("", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		ctx.Locals("wsUserID", middleware.GetUserID(ctx))
		ctx.Locals("wsUserRole", middleware.GetUserRole(ctx))
		return ctx.Next()
	})
	app.Get("/", websocket.New(pushHandler))
}

// @Summary Системные пуши
// @Tags Websocket Системные пуши
// @Description Изменения статусов согласования: владельцу по его сущностям, сотрудникам - обновление списков
// @Param   Authorization		header		string		true		"Authorization token"
// @Success 200 {object} wsmodels.ServerMessage
// @Failure 400
// @Failure 401
// @Failure 500
// @router /api/v1/ws [get]
func pushHandler(c *websocket.Conn) {
	userID, _ := c.Locals("wsUserID").(string)
	role, _ := c.Locals("wsUserRole").(models.UserRole)
	client := wsclient.NewClient(userID, c)
	connectionhub.Instance.AddClient(userID, role, c)
	defer func() {
		connectionhub.Instance.DeleteClient(userID)
	}()
	client.Dispatch()
}
