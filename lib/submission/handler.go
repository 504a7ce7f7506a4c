package submissionhandler

import (
	"marketplace-backend/db"
	entitystore "marketplace-backend/lib/approval/entity-store"
	"marketplace-backend/lib/approval/transitions"
	notifyhandler "marketplace-backend/lib/notify"
	"marketplace-backend/lib/rbac"
	apperrors "marketplace-backend/lib/utils/app-errors"
	"marketplace-backend/models"
	approvalapimodels "marketplace-backend/models/api/approval"
	ownerapimodels "marketplace-backend/models/api/owner"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Provider подача сущностей владельцами. Сущность создается в начальном статусе своего вида
type Provider interface {
	Submit(principal models.Principal, kind models.EntityKind, data ownerapimodels.Submission) (*approvalapimodels.EntityView, error)
	Get(principal models.Principal, kind models.EntityKind, id string) (*approvalapimodels.EntityView, error)
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

func (i impl) Submit(principal models.Principal, kind models.EntityKind, data ownerapimodels.Submission) (*approvalapimodels.EntityView, error) {
	logger := log.
		WithField("entity_kind", kind).
		WithField("user_id", principal.UserID)
	table, ok := transitions.For(kind)
	if !ok {
		return nil, apperrors.NotFoundError{Kind: "вид сущности", ID: string(kind)}
	}
	if !i.access.Allowed(principal.Role, kind, models.SubmitPermission) {
		return nil, apperrors.UnauthorizedError{UserID: principal.UserID, Role: principal.Role, Kind: kind}
	}
	if err := data.Validate(); err != nil {
		return nil, apperrors.ValidationError{Err: err}
	}
	rec := data.Record(principal.UserID, table.Initial)
	err := i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("ошибка создания сущности")
		return nil, errors.Wrap(err, "ошибка создания сущности")
	}
	id := rec.GetID()
	logger.WithField("entity_id", id).Info("сущность подана на согласование")
	i.notifier.EntitySubmitted(kind, id, principal.UserID)
	return i.Get(principal, kind, id)
}

func (i impl) Get(principal models.Principal, kind models.EntityKind, id string) (*approvalapimodels.EntityView, error) {
	if !kind.IsValid() {
		return nil, apperrors.NotFoundError{Kind: "вид сущности", ID: string(kind)}
	}
	rec, err := i.store.GetByID(kind, id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения сущности")
	}
	// чужие сущности владельцу не видны
	if rec == nil || rec.OwnerID != principal.UserID {
		return nil, apperrors.NotFoundError{Kind: kind.ToHuman(), ID: id}
	}
	result := approvalapimodels.EntityConvert(kind, *rec)
	return &result, nil
}
