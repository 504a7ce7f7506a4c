package apiv1

import (
	"fmt"
	"io"
	"strconv"

	"marketplace-backend/config"
	"marketplace-backend/controllers"
	videohandler "marketplace-backend/lib/video"
	"marketplace-backend/middleware"
	apimodels "marketplace-backend/models/api"
	videoapimodels "marketplace-backend/models/api/video"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type videoApiController struct {
	controllers.BaseAPIController
}

func InitVideoApiRouters(app *fiber.App) {
	controller := videoApiController{}
	app.Post("upload-chunk", middleware.WithBodyLimit(config.Conf.Upload.MaxChunkBodySize), controller.uploadChunk)
	app.Route("upload-session/:id", func(router fiber.Router) {
		router.Get("", controller.getSession)
		router.Post("fail", controller.failSession)
	})
	app.Get(":id/file", controller.file)
}

// @Summary Загрузка чанка видео
// @Tags Видео
// @Description Прием одного чанка. Нулевой чанк создает сессию загрузки, последний собирает видео и отправляет на согласование
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   session_id			formData	string	true	"upload session ID"
// @Param   chunk_index			formData	int		true	"chunk index"
// @Param   total_chunks		formData	int		true	"total chunks"
// @Param   title				formData	string	false	"video title (chunk 0)"
// @Param   description			formData	string	false	"video description (chunk 0)"
// @Param   original_name		formData	string	false	"file name (chunk 0)"
// @Param   total_size			formData	int		false	"file size (chunk 0)"
// @Param   chunk				formData	file	true	"chunk data"
// @Success 200 {object} apimodels.Response{data=videoapimodels.ChunkAck}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 413 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/videos/upload-chunk [post]
func (c *videoApiController) uploadChunk(ctx *fiber.Ctx) error {
	payload, err := c.parseChunk(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := videohandler.Instance.ReceiveChunk(ctx.UserContext(), middleware.GetPrincipal(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка приема чанка")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

func (c *videoApiController) parseChunk(ctx *fiber.Ctx) (videoapimodels.ChunkData, error) {
	result := videoapimodels.ChunkData{
		SessionID:    ctx.FormValue("session_id"),
		Title:        ctx.FormValue("title"),
		Description:  ctx.FormValue("description"),
		OriginalName: ctx.FormValue("original_name"),
	}
	var err error
	if result.ChunkIndex, err = strconv.Atoi(ctx.FormValue("chunk_index")); err != nil {
		return result, errors.New("некорректный номер чанка")
	}
	if result.TotalChunks, err = strconv.Atoi(ctx.FormValue("total_chunks")); err != nil {
		return result, errors.New("некорректное количество чанков")
	}
	if value := ctx.FormValue("total_size"); value != "" {
		if result.TotalSize, err = strconv.ParseInt(value, 10, 64); err != nil {
			return result, errors.New("некорректный размер файла")
		}
	}
	fileHeader, err := ctx.FormFile("chunk")
	if err != nil {
		return result, errors.New("не удалось получить чанк из запроса")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return result, errors.New("не удалось прочитать чанк")
	}
	defer file.Close()
	result.Data, err = io.ReadAll(file)
	if err != nil {
		return result, errors.New("не удалось прочитать чанк")
	}
	return result, nil
}

// @Summary Сессия загрузки
// @Tags Видео
// @Description Статус сессии загрузки и количество принятых чанков
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "upload session ID"
// @Success 200 {object} apimodels.Response{data=videoapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/videos/upload-session/{id} [get]
func (c *videoApiController) getSession(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := videohandler.Instance.GetSession(middleware.GetPrincipal(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения сессии загрузки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Сбой загрузки
// @Tags Видео
// @Description Клиент сообщает номер чанка, который не удалось отправить
// @Param   Authorization		header	string						true	"Authorization token"
// @Param   id          		path    string  					true    "upload session ID"
// @Param	body 				body	videoapimodels.FailRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=videoapimodels.SessionView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/videos/upload-session/{id}/fail [post]
func (c *videoApiController) failSession(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload videoapimodels.FailRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := videohandler.Instance.FailSession(ctx.UserContext(), middleware.GetPrincipal(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка завершения сессии загрузки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Файл видео
// @Tags Видео
// @Description Просмотр видео владельцем или сотрудником
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "video ID"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/videos/{id}/file [get]
func (c *videoApiController) file(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	reader, video, err := videohandler.Instance.OpenVideo(ctx.UserContext(), middleware.GetPrincipal(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения видео")
	}
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", video.OriginalName))
	// fasthttp закрывает reader после отправки
	return ctx.Status(fiber.StatusOK).SendStream(reader, int(video.Size))
}
