package apiv1

import (
	"marketplace-backend/controllers"
	submissionhandler "marketplace-backend/lib/submission"
	"marketplace-backend/middleware"
	"marketplace-backend/models"
	apimodels "marketplace-backend/models/api"
	ownerapimodels "marketplace-backend/models/api/owner"

	"github.com/gofiber/fiber/v2"
)

type ownerApiController struct {
	controllers.BaseAPIController
}

func InitOwnerApiRouters(app *fiber.App) {
	controller := ownerApiController{}
	app.Route(":kind", func(router fiber.Router) {
		router.Post("", middleware.KindPermission(models.SubmitPermission), controller.submit)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("active", controller.setActive)
			idRoute.Put("online", controller.setOnline)
		})
	})
}

// @Summary Подать на согласование
// @Tags Владелец
// @Description Создание сущности, тело запроса зависит от вида сущности
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   kind          		path    string  true    "entity kind"
// @Param	body 				body	object	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/owner/{kind} [post]
func (c *ownerApiController) submit(ctx *fiber.Ctx) error {
	kind := models.EntityKind(ctx.Params("kind"))
	payload, ok := ownerapimodels.NewSubmission(kind)
	if !ok {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("сущность этого вида подается через загрузку"))
	}
	if err := c.BodyParser(ctx, payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := submissionhandler.Instance.Submit(middleware.GetPrincipal(ctx), kind, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка подачи на согласование")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Получение
// @Tags Владелец
// @Description Получение своей сущности со статусом и комментарием согласующего
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   kind          		path    string  true    "entity kind"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/owner/{kind}/{id} [get]
func (c *ownerApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := submissionhandler.Instance.Get(middleware.GetPrincipal(ctx), models.EntityKind(ctx.Params("kind")), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения сущности")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Активность
// @Tags Владелец
// @Description Включение/выключение признака активности своей одобренной сущности
// @Param   Authorization		header	string							true	"Authorization token"
// @Param   kind          		path    string  				    	true    "entity kind"
// @Param   id          		path    string  				    	true    "rec ID"
// @Param	body 				body	approvalapimodels.ToggleRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/owner/{kind}/{id}/active [put]
func (c *ownerApiController) setActive(ctx *fiber.Ctx) error {
	return setFlag(&c.BaseAPIController, ctx, models.FlagActive)
}

// @Summary Онлайн
// @Tags Владелец
// @Description Выход на линию/уход с линии (курьеры, такси)
// @Param   Authorization		header	string							true	"Authorization token"
// @Param   kind          		path    string  				    	true    "entity kind"
// @Param   id          		path    string  				    	true    "rec ID"
// @Param	body 				body	approvalapimodels.ToggleRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/owner/{kind}/{id}/online [put]
func (c *ownerApiController) setOnline(ctx *fiber.Ctx) error {
	return setFlag(&c.BaseAPIController, ctx, models.FlagOnline)
}
