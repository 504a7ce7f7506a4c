package apiv1

import (
	"fmt"

	"marketplace-backend/config"
	"marketplace-backend/controllers"
	approvalhandler "marketplace-backend/lib/approval"
	availabilityhandler "marketplace-backend/lib/availability"
	pdfexport "marketplace-backend/lib/export/pdf"
	xlsexport "marketplace-backend/lib/export/xls"
	"marketplace-backend/middleware"
	"marketplace-backend/models"
	apimodels "marketplace-backend/models/api"
	approvalapimodels "marketplace-backend/models/api/approval"

	"github.com/gofiber/fiber/v2"
)

type approvalApiController struct {
	controllers.BaseAPIController
}

func InitApprovalApiRouters(app *fiber.App) {
	controller := approvalApiController{}
	app.Get("kinds", controller.kinds)
	app.Route(":kind", func(router fiber.Router) {
		router.Use(middleware.KindPermission(models.ViewPermission))
		router.Post("list", controller.list)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Get("history", controller.history)
			idRoute.Get("history/xlsx", middleware.KindPermission(models.ExportPermission), controller.historyXlsx)
			idRoute.Get("history/pdf", middleware.KindPermission(models.ExportPermission), controller.historyPdf)
			idRoute.Put("transition", controller.transition) // произвольный переход по таблице
			idRoute.Put("approve", controller.approve)       // одобрить
			idRoute.Put("reject", controller.reject)         // отклонить
			idRoute.Put("reopen", controller.reopen)         // вернуть на рассмотрение
			idRoute.Put("active", controller.setActive)
			idRoute.Put("online", controller.setOnline)
		})
	})
}

func (c *approvalApiController) getKind(ctx *fiber.Ctx) models.EntityKind {
	return models.EntityKind(ctx.Params("kind"))
}

// @Summary Виды сущностей
// @Tags Согласование
// @Description Виды сущностей, доступные пользователю, с таблицами переходов
// @Param   Authorization		header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.KindView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/kinds [get]
func (c *approvalApiController) kinds(ctx *fiber.Ctx) error {
	result := approvalhandler.Instance.Kinds(middleware.GetPrincipal(ctx))
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Список
// @Tags Согласование
// @Description Список сущностей вида с фильтром по статусу
// @Param   Authorization		header	string							true	"Authorization token"
// @Param   kind          		path    string  				    	true    "entity kind"
// @Param	body 				body	approvalapimodels.ListFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/list [post]
func (c *approvalApiController) list(ctx *fiber.Ctx) error {
	var payload approvalapimodels.ListFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := approvalhandler.Instance.List(middleware.GetPrincipal(ctx), c.getKind(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Получение
// @Tags Согласование
// @Description Получение сущности
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   kind          		path    string  true    "entity kind"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id} [get]
func (c *approvalApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := approvalhandler.Instance.Get(middleware.GetPrincipal(ctx), c.getKind(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения сущности")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary История согласования
// @Tags Согласование
// @Description Журнал переходов сущности в порядке записи
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   kind          		path    string  true    "entity kind"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.HistoryView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id}/history [get]
func (c *approvalApiController) history(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := approvalhandler.Instance.History(middleware.GetPrincipal(ctx), c.getKind(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории согласования")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Выгрузка истории в xlsx
// @Tags Согласование
// @Description Выгрузка журнала согласования в xlsx
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   kind          		path    string  true    "entity kind"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id}/history/xlsx [get]
func (c *approvalApiController) historyXlsx(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	kind := c.getKind(ctx)
	list, err := approvalhandler.Instance.History(middleware.GetPrincipal(ctx), kind, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории согласования")
	}
	buf, err := xlsexport.Instance.ExportHistory(kind, id, list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки истории согласования")
	}
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=history_%v_%v.xlsx", kind, id))
	return ctx.Status(fiber.StatusOK).Send(buf.Bytes())
}

// @Summary Выгрузка истории в pdf
// @Tags Согласование
// @Description Выгрузка журнала согласования в pdf
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   kind          		path    string  true    "entity kind"
// @Param   id          		path    string  true    "rec ID"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id}/history/pdf [get]
func (c *approvalApiController) historyPdf(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	kind := c.getKind(ctx)
	principal := middleware.GetPrincipal(ctx)
	entity, err := approvalhandler.Instance.Get(principal, kind, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения сущности")
	}
	list, err := approvalhandler.Instance.History(principal, kind, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории согласования")
	}
	data, err := pdfexport.GenerateHistory(config.Conf.Export.FontDir, *entity, list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки истории согласования")
	}
	ctx.Set(fiber.HeaderContentType, "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=history_%v_%v.pdf", kind, id))
	return ctx.Status(fiber.StatusOK).Send(data)
}

// @Summary Смена статуса
// @Tags Согласование
// @Description Переход по таблице переходов вида сущности
// @Param   Authorization		header	string								true	"Authorization token"
// @Param   kind          		path    string  				    		true    "entity kind"
// @Param   id          		path    string  				    		true    "rec ID"
// @Param	body 				body	approvalapimodels.TransitionRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id}/transition [put]
func (c *approvalApiController) transition(ctx *fiber.Ctx) error {
	var payload approvalapimodels.TransitionRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	return c.doTransition(ctx, payload.To, payload.Note, payload.ExpectedFrom)
}

// @Summary Одобрить
// @Tags Согласование
// @Description Одобрить
// @Param   Authorization		header	string							true	"Authorization token"
// @Param   kind          		path    string  				    	true    "entity kind"
// @Param   id          		path    string  				    	true    "rec ID"
// @Param	body 				body	approvalapimodels.NoteRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id}/approve [put]
func (c *approvalApiController) approve(ctx *fiber.Ctx) error {
	return c.noteTransition(ctx, models.StatusApproved)
}

// @Summary Отклонить
// @Tags Согласование
// @Description Отклонить
// @Param   Authorization		header	string							true	"Authorization token"
// @Param   kind          		path    string  				    	true    "entity kind"
// @Param   id          		path    string  				    	true    "rec ID"
// @Param	body 				body	approvalapimodels.NoteRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id}/reject [put]
func (c *approvalApiController) reject(ctx *fiber.Ctx) error {
	return c.noteTransition(ctx, models.StatusRejected)
}

// @Summary Вернуть на рассмотрение
// @Tags Согласование
// @Description Вернуть одобренную или отклоненную сущность на рассмотрение
// @Param   Authorization		header	string							true	"Authorization token"
// @Param   kind          		path    string  				    	true    "entity kind"
// @Param   id          		path    string  				    	true    "rec ID"
// @Param	body 				body	approvalapimodels.NoteRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.EntityView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 422 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/admin/{kind}/{id}/reopen [put]
func (c *approvalApiController) reopen(ctx *fiber.Ctx) error {
	return c.noteTransition(ctx, models.StatusPending)
}

func (c *approvalApiController) noteTransition(ctx *fiber.Ctx, to models.ApprovalStatus) error {
	var payload approvalapimodels.NoteRequest
	if len(ctx.Body()) != 0 {
		if err := c.BodyParser(ctx, &payload); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	}
	return c.doTransition(ctx, to, payload.Note, payload.ExpectedFrom)
}

func (c *approvalApiController) doTransition(ctx *fiber.Ctx, to models.ApprovalStatus, note string, expectedFrom models.ApprovalStatus) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := approvalhandler.Instance.Transition(approvalhandler.TransitionData{
		Kind:         c.getKind(ctx),
		EntityID:     id,
		To:           to,
		Principal:    middleware.GetPrincipal(ctx),
		Note:         note,
		ExpectedFrom: expectedFrom,
	})
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка смены статуса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Активность
// @Tags Согласование
// @Description Включение/выключение признака активности одобренной сущности
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
// @router /api/v1/admin/{kind}/{id}/active [put]
func (c *approvalApiController) setActive(ctx *fiber.Ctx) error {
	return setFlag(&c.BaseAPIController, ctx, models.FlagActive)
}

// @Summary Онлайн
// @Tags Согласование
// @Description Включение/выключение признака онлайн одобренной сущности
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
// @router /api/v1/admin/{kind}/{id}/online [put]
func (c *approvalApiController) setOnline(ctx *fiber.Ctx) error {
	return setFlag(&c.BaseAPIController, ctx, models.FlagOnline)
}

func setFlag(c *controllers.BaseAPIController, ctx *fiber.Ctx, flag models.AvailabilityFlag) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload approvalapimodels.ToggleRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	kind := models.EntityKind(ctx.Params("kind"))
	result, err := availabilityhandler.Instance.SetFlag(middleware.GetPrincipal(ctx), kind, id, flag, *payload.Value)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка изменения признака")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
