package controllers

import (
	"net/http"

	apperrors "marketplace-backend/lib/utils/app-errors"
	"marketplace-backend/middleware"
	apimodels "marketplace-backend/models/api"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetIDByKey(ctx, "id")
}

func (c *BaseAPIController) GetIDByKey(ctx *fiber.Ctx, key string) (string, error) {
	id := ctx.Params(key)
	if id == "" || len(id) > 36 {
		return "", errors.Errorf("некорректный идентификатор %v", key)
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.
		WithField("user_id", middleware.GetUserID(ctx)).
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
}

// SendError ответ по типу ошибки, неизвестные ошибки логируются и отдаются как 500
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, msg string) error {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		logger.WithError(err).Error(msg)
		return ctx.Status(status).JSON(apimodels.NewError(msg))
	}
	logger.WithError(err).Info(msg)
	return ctx.Status(status).JSON(apimodels.NewCodedError(code, err.Error()))
}

func errorStatus(err error) (status int, code string) {
	var notFound apperrors.NotFoundError
	var unauthorized apperrors.UnauthorizedError
	var illegal apperrors.IllegalTransitionError
	var concurrent apperrors.ConcurrentModificationError
	var invalidState apperrors.InvalidStateError
	var sessionState apperrors.UploadSessionStateError
	var missingNote apperrors.MissingNoteError
	var unsupported apperrors.UnsupportedToggleError
	var validation apperrors.ValidationError
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &unauthorized):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.As(err, &illegal):
		return http.StatusConflict, "ILLEGAL_TRANSITION"
	case errors.As(err, &concurrent):
		return http.StatusConflict, "CONCURRENT_MODIFICATION"
	case errors.As(err, &invalidState), errors.As(err, &sessionState):
		return http.StatusConflict, "INVALID_STATE"
	case errors.As(err, &missingNote):
		return http.StatusUnprocessableEntity, "NOTE_REQUIRED"
	case errors.As(err, &unsupported):
		return http.StatusBadRequest, "UNSUPPORTED_TOGGLE"
	case errors.As(err, &validation):
		return http.StatusBadRequest, "VALIDATION"
	}
	return http.StatusInternalServerError, ""
}
