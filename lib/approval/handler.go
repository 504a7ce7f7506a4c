package approvalhandler

import (
	"strings"
	"time"

	"marketplace-backend/db"
	auditstore "marketplace-backend/lib/approval/audit-store"
	entitystore "marketplace-backend/lib/approval/entity-store"
	listcache "marketplace-backend/lib/approval/list-cache"
	"marketplace-backend/lib/approval/transitions"
	notifyhandler "marketplace-backend/lib/notify"
	"marketplace-backend/lib/rbac"
	apperrors "marketplace-backend/lib/utils/app-errors"
	"marketplace-backend/lib/utils/helpers"
	"marketplace-backend/models"
	approvalapimodels "marketplace-backend/models/api/approval"
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TransitionData запрос на смену статуса
type TransitionData struct {
	Kind      models.EntityKind
	EntityID  string
	To        models.ApprovalStatus
	Principal models.Principal
	Note      string
	// ExpectedFrom статус, который видел администратор при открытии карточки. Необязательный
	ExpectedFrom models.ApprovalStatus
}

type Provider interface {
	// Transition единственная точка смены статуса согласуемых сущностей
	Transition(data TransitionData) (*approvalapimodels.EntityView, error)
	Get(principal models.Principal, kind models.EntityKind, id string) (*approvalapimodels.EntityView, error)
	List(principal models.Principal, kind models.EntityKind, filter approvalapimodels.ListFilter) ([]approvalapimodels.EntityView, int64, error)
	History(principal models.Principal, kind models.EntityKind, id string) ([]approvalapimodels.HistoryView, error)
	Kinds(principal models.Principal) []approvalapimodels.KindView
}

var Instance Provider

type txFunc func(fn func(entityStore entitystore.Provider, auditStore auditstore.Provider) error) error

func NewHandler() {
	Instance = impl{
		entityStore: entitystore.NewInstance(db.DB),
		auditStore:  auditstore.NewInstance(db.DB),
		withTx: func(fn func(entityStore entitystore.Provider, auditStore auditstore.Provider) error) error {
			return db.DB.Transaction(func(tx *gorm.DB) error {
				return fn(entitystore.NewInstance(tx), auditstore.NewInstance(tx))
			})
		},
		access:    rbac.Instance,
		notifier:  notifyhandler.Instance,
		listCache: listcache.Instance,
		now:       time.Now,
	}
}

type impl struct {
	entityStore entitystore.Provider
	auditStore  auditstore.Provider
	withTx      txFunc
	access      rbac.Provider
	notifier    notifyhandler.Provider
	listCache   listcache.Provider
	now         func() time.Time
}

func (i impl) getLogger(kind models.EntityKind, id string, principal models.Principal) *log.Entry {
	return log.
		WithField("entity_kind", kind).
		WithField("entity_id", id).
		WithField("user_id", principal.UserID)
}

func (i impl) Transition(data TransitionData) (*approvalapimodels.EntityView, error) {
	logger := i.getLogger(data.Kind, data.EntityID, data.Principal).
		WithField("to_status", data.To)
	table, ok := transitions.For(data.Kind)
	if !ok {
		return nil, apperrors.NotFoundError{Kind: "вид сущности", ID: string(data.Kind)}
	}
	if !i.access.CanReview(data.Principal.Role, data.Kind) {
		return nil, apperrors.UnauthorizedError{UserID: data.Principal.UserID, Role: data.Principal.Role, Kind: data.Kind}
	}
	rec, err := i.getRec(data.Kind, data.EntityID)
	if err != nil {
		return nil, err
	}
	if rec.Status == data.To {
		// повторный запрос того же перехода, в том числе с устаревшим ExpectedFrom
		logger.Info("статус уже установлен, изменений нет")
		result := approvalapimodels.EntityConvert(data.Kind, *rec)
		return &result, nil
	}
	if data.ExpectedFrom != "" && data.ExpectedFrom != rec.Status {
		return nil, apperrors.ConcurrentModificationError{Kind: data.Kind, ID: data.EntityID, Expected: data.ExpectedFrom, Actual: rec.Status}
	}
	edge, ok := table.Edge(rec.Status, data.To)
	if !ok {
		return nil, apperrors.IllegalTransitionError{Kind: data.Kind, From: rec.Status, To: data.To}
	}
	note := strings.TrimSpace(data.Note)
	if edge.NoteRequired && helpers.IsBlank(note) {
		return nil, apperrors.MissingNoteError{Kind: data.Kind, From: rec.Status, To: data.To}
	}

	now := i.now()
	upd := dbmodels.StatusUpdate{
		To:         data.To,
		Note:       note,
		ReviewedBy: data.Principal.UserID,
		ReviewedAt: now,
	}
	err = i.withTx(func(entityStore entitystore.Provider, auditStore auditstore.Provider) error {
		swapped, err := entityStore.CompareAndSetStatus(data.Kind, data.EntityID, rec.Status, upd)
		if err != nil {
			return errors.Wrap(err, "ошибка обновления статуса")
		}
		if !swapped {
			concurrentErr := apperrors.ConcurrentModificationError{Kind: data.Kind, ID: data.EntityID, Expected: rec.Status}
			actual, err := entityStore.GetByID(data.Kind, data.EntityID)
			if err == nil && actual != nil {
				concurrentErr.Actual = actual.Status
			}
			return concurrentErr
		}
		auditRec := dbmodels.TransitionAudit{
			EntityKind:    data.Kind,
			EntityID:      data.EntityID,
			FromStatus:    rec.Status,
			ToStatus:      data.To,
			PrincipalID:   data.Principal.UserID,
			PrincipalRole: data.Principal.Role,
		}
		auditRec.CreatedAt = now
		if note != "" {
			auditRec.Note = &note
		}
		_, err = auditStore.Create(auditRec)
		if err != nil {
			return errors.Wrap(err, "ошибка добавления записи в журнал согласования")
		}
		return nil
	})
	if err != nil {
		logger.WithError(err).Warn("статус не изменен")
		return nil, err
	}
	logger.WithField("from_status", rec.Status).Info("статус изменен")

	i.notifier.EntityTransitioned(models.TransitionEvent{
		Kind:        data.Kind,
		EntityID:    data.EntityID,
		OwnerID:     rec.OwnerID,
		From:        rec.Status,
		To:          data.To,
		Note:        note,
		PrincipalID: data.Principal.UserID,
		At:          now,
	})

	rec.Status = data.To
	rec.ReviewerNote = note
	rec.ReviewedAt = &now
	rec.ReviewedBy = data.Principal.UserID
	rec.UpdatedAt = now
	result := approvalapimodels.EntityConvert(data.Kind, *rec)
	return &result, nil
}

func (i impl) Get(principal models.Principal, kind models.EntityKind, id string) (*approvalapimodels.EntityView, error) {
	if err := i.checkView(principal, kind); err != nil {
		return nil, err
	}
	rec, err := i.getRec(kind, id)
	if err != nil {
		return nil, err
	}
	result := approvalapimodels.EntityConvert(kind, *rec)
	return &result, nil
}

func (i impl) List(principal models.Principal, kind models.EntityKind, filter approvalapimodels.ListFilter) ([]approvalapimodels.EntityView, int64, error) {
	if err := i.checkView(principal, kind); err != nil {
		return nil, 0, err
	}
	page, limit := filter.GetPage()
	// поколение фиксируется до чтения из БД, страница прочитанная до сброса кеша не попадет в новое поколение
	generation := i.listCache.Generation(kind)
	cached, ok := i.listCache.Get(kind, generation, filter.Status, page, limit)
	if !ok {
		list, rowCount, err := i.entityStore.List(kind, filter.Status, page, limit)
		if err != nil {
			return nil, 0, errors.Wrap(err, "ошибка получения списка")
		}
		cached = listcache.Page{List: list, RowCount: rowCount}
		i.listCache.Set(kind, generation, filter.Status, page, limit, cached)
	}
	result := make([]approvalapimodels.EntityView, 0, len(cached.List))
	for _, rec := range cached.List {
		result = append(result, approvalapimodels.EntityConvert(kind, rec))
	}
	return result, cached.RowCount, nil
}

func (i impl) History(principal models.Principal, kind models.EntityKind, id string) ([]approvalapimodels.HistoryView, error) {
	if err := i.checkView(principal, kind); err != nil {
		return nil, err
	}
	if _, err := i.getRec(kind, id); err != nil {
		return nil, err
	}
	list, err := i.auditStore.List(kind, id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения истории согласования")
	}
	result := make([]approvalapimodels.HistoryView, 0, len(list))
	for _, rec := range list {
		result = append(result, approvalapimodels.HistoryConvert(rec))
	}
	return result, nil
}

func (i impl) Kinds(principal models.Principal) []approvalapimodels.KindView {
	result := []approvalapimodels.KindView{}
	for _, kind := range models.AllKinds {
		if !i.access.Allowed(principal.Role, kind, models.ViewPermission) {
			continue
		}
		table, _ := transitions.For(kind)
		view := approvalapimodels.KindView{
			Kind:    kind,
			Name:    kind.ToHuman(),
			Initial: table.Initial,
			Edges:   []approvalapimodels.EdgeView{},
			Flags:   kind.Flags(),
		}
		for _, edge := range table.Edges() {
			view.Edges = append(view.Edges, approvalapimodels.EdgeView{
				From:         edge.From,
				To:           edge.To,
				NoteRequired: edge.NoteRequired,
			})
		}
		result = append(result, view)
	}
	return result
}

func (i impl) checkView(principal models.Principal, kind models.EntityKind) error {
	if !kind.IsValid() {
		return apperrors.NotFoundError{Kind: "вид сущности", ID: string(kind)}
	}
	if !i.access.Allowed(principal.Role, kind, models.ViewPermission) {
		return apperrors.UnauthorizedError{UserID: principal.UserID, Role: principal.Role, Kind: kind}
	}
	return nil
}

func (i impl) getRec(kind models.EntityKind, id string) (*dbmodels.ApprovableRecord, error) {
	rec, err := i.entityStore.GetByID(kind, id)
	if err != nil {
		log.
			WithField("entity_kind", kind).
			WithField("entity_id", id).
			WithError(err).
			Error("ошибка получения сущности")
		return nil, errors.Wrap(err, "ошибка получения сущности")
	}
	if rec == nil {
		return nil, apperrors.NotFoundError{Kind: kind.ToHuman(), ID: id}
	}
	return rec, nil
}
