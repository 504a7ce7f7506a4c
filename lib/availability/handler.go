package availabilityhandler

import (
	"marketplace-backend/db"
	entitystore "marketplace-backend/lib/approval/entity-store"
	notifyhandler "marketplace-backend/lib/notify"
	"marketplace-backend/lib/rbac"
	apperrors "marketplace-backend/lib/utils/app-errors"
	"marketplace-backend/models"
	approvalapimodels "marketplace-backend/models/api/approval"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Provider признаки активности/онлайн. Не меняют статус согласования и не пишутся в журнал
type Provider interface {
	SetFlag(principal models.Principal, kind models.EntityKind, id string, flag models.AvailabilityFlag, value bool) (*approvalapimodels.EntityView, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:    entitystore.NewInstance(db.DB),
		access:   rbac.Instance,
		notifier: notifyhandler.Instance,
	}
}

type impl struct {
	store    entitystore.Provider
	access   rbac.Provider
	notifier notifyhandler.Provider
}

func (i impl) SetFlag(principal models.Principal, kind models.EntityKind, id string, flag models.AvailabilityFlag, value bool) (*approvalapimodels.EntityView, error) {
	logger := log.
		WithField("entity_kind", kind).
		WithField("entity_id", id).
		WithField("user_id", principal.UserID).
		WithField("flag", flag)
	if !kind.IsValid() {
		return nil, apperrors.NotFoundError{Kind: "вид сущности", ID: string(kind)}
	}
	if !kind.SupportsFlag(flag) {
		return nil, apperrors.UnsupportedToggleError{Kind: kind, Flag: flag}
	}
	rec, err := i.store.GetByID(kind, id)
	if err != nil {
		logger.WithError(err).Error("ошибка получения сущности")
		return nil, errors.Wrap(err, "ошибка получения сущности")
	}
	if rec == nil {
		return nil, apperrors.NotFoundError{Kind: kind.ToHuman(), ID: id}
	}
	// менять доступность может владелец или согласующий
	if rec.OwnerID != principal.UserID && !i.access.CanReview(principal.Role, kind) {
		return nil, apperrors.UnauthorizedError{UserID: principal.UserID, Role: principal.Role, Kind: kind}
	}
	if rec.Status != models.StatusApproved {
		return nil, apperrors.InvalidStateError{Kind: kind, ID: id, Status: rec.Status, Op: string(flag)}
	}
	updated, err := i.store.SetFlag(kind, id, flag, value)
	if err != nil {
		logger.WithError(err).Error("ошибка обновления признака")
		return nil, errors.Wrap(err, "ошибка обновления признака")
	}
	if !updated {
		// статус сменился между чтением и записью
		rec, err = i.store.GetByID(kind, id)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка получения сущности")
		}
		if rec == nil {
			return nil, apperrors.NotFoundError{Kind: kind.ToHuman(), ID: id}
		}
		return nil, apperrors.InvalidStateError{Kind: kind, ID: id, Status: rec.Status, Op: string(flag)}
	}
	logger.WithField("value", value).Info("признак доступности изменен")
	i.notifier.AvailabilityChanged(kind, id)

	rec, err = i.store.GetByID(kind, id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения сущности")
	}
	if rec == nil {
		return nil, apperrors.NotFoundError{Kind: kind.ToHuman(), ID: id}
	}
	result := approvalapimodels.EntityConvert(kind, *rec)
	return &result, nil
}
