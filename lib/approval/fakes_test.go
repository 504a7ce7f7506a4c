package approvalhandler

import (
	"sync"
	"time"

	auditstore "marketplace-backend/lib/approval/audit-store"
	entitystore "marketplace-backend/lib/approval/entity-store"
	listcache "marketplace-backend/lib/approval/list-cache"
	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"
)

type entityKey struct {
	kind models.EntityKind
	id   string
}

type fakeEntityStore struct {
	mu      sync.Mutex
	records map[entityKey]dbmodels.ApprovableRecord
	onRead  func()
}

func newFakeEntityStore() *fakeEntityStore {
	return &fakeEntityStore{records: map[entityKey]dbmodels.ApprovableRecord{}}
}

func (f *fakeEntityStore) put(kind models.EntityKind, rec dbmodels.ApprovableRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[entityKey{kind, rec.ID}] = rec
}

func (f *fakeEntityStore) status(kind models.EntityKind, id string) models.ApprovalStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[entityKey{kind, id}].Status
}

func (f *fakeEntityStore) Create(rec interface{}) error {
	return nil
}

func (f *fakeEntityStore) GetByID(kind models.EntityKind, id string) (*dbmodels.ApprovableRecord, error) {
	f.mu.Lock()
	rec, ok := f.records[entityKey{kind, id}]
	f.mu.Unlock()
	if f.onRead != nil {
		f.onRead()
	}
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeEntityStore) CompareAndSetStatus(kind models.EntityKind, id string, from models.ApprovalStatus, upd dbmodels.StatusUpdate) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[entityKey{kind, id}]
	if !ok || rec.Status != from {
		return false, nil
	}
	reviewedAt := upd.ReviewedAt
	rec.Status = upd.To
	rec.ReviewerNote = upd.Note
	rec.ReviewedAt = &reviewedAt
	rec.ReviewedBy = upd.ReviewedBy
	rec.UpdatedAt = upd.ReviewedAt
	f.records[entityKey{kind, id}] = rec
	return true, nil
}

func (f *fakeEntityStore) SetFlag(kind models.EntityKind, id string, flag models.AvailabilityFlag, value bool) (bool, error) {
	return false, nil
}

func (f *fakeEntityStore) List(kind models.EntityKind, status models.ApprovalStatus, page, limit int) ([]dbmodels.ApprovableRecord, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := []dbmodels.ApprovableRecord{}
	for key, rec := range f.records {
		if key.kind == kind && (status == "" || rec.Status == status) {
			list = append(list, rec)
		}
	}
	return list, int64(len(list)), nil
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []dbmodels.TransitionAudit
	err     error
}

func (f *fakeAuditStore) Create(rec dbmodels.TransitionAudit) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	rec.ID = time.Now().String()
	rec.Seq = int64(len(f.entries) + 1)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	f.entries = append(f.entries, rec)
	return rec.ID, nil
}

func (f *fakeAuditStore) List(kind models.EntityKind, entityID string) ([]dbmodels.TransitionAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []dbmodels.TransitionAudit{}
	for _, e := range f.entries {
		if e.EntityKind == kind && e.EntityID == entityID {
			result = append(result, e)
		}
	}
	return result, nil
}

type fakeAccess struct {
	reviewers map[models.UserRole]bool
}

func (f fakeAccess) Allowed(role models.UserRole, kind models.EntityKind, permission models.Permission) bool {
	return f.reviewers[role]
}

func (f fakeAccess) CanReview(role models.UserRole, kind models.EntityKind) bool {
	return f.reviewers[role]
}

func (f fakeAccess) RegisterRule(kinds []models.EntityKind, permission models.Permission, roles []models.UserRole) {
}

func (f fakeAccess) GetPermissions(role models.UserRole) map[models.EntityKind][]models.Permission {
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []models.TransitionEvent
}

func (f *fakeNotifier) EntityTransitioned(event models.TransitionEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) EntitySubmitted(kind models.EntityKind, entityID, ownerID string) {}

func (f *fakeNotifier) AvailabilityChanged(kind models.EntityKind, entityID string) {}

type testEnv struct {
	impl     impl
	entities *fakeEntityStore
	audit    *fakeAuditStore
	notifier *fakeNotifier
	now      time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		entities: newFakeEntityStore(),
		audit:    &fakeAuditStore{},
		notifier: &fakeNotifier{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	env.impl = impl{
		entityStore: env.entities,
		auditStore:  env.audit,
		withTx: func(fn func(entityStore entitystore.Provider, auditStore auditstore.Provider) error) error {
			if env.audit.err == nil {
				return fn(env.entities, env.audit)
			}
			// откат как в транзакции БД
			env.entities.mu.Lock()
			snapshot := map[entityKey]dbmodels.ApprovableRecord{}
			for k, v := range env.entities.records {
				snapshot[k] = v
			}
			env.entities.mu.Unlock()
			err := fn(env.entities, env.audit)
			if err != nil {
				env.entities.mu.Lock()
				env.entities.records = snapshot
				env.entities.mu.Unlock()
			}
			return err
		},
		access:    fakeAccess{reviewers: map[models.UserRole]bool{models.UserRoleAdmin: true}},
		notifier:  env.notifier,
		listCache: listcache.NewInstance(time.Minute),
		now: func() time.Time {
			return env.now
		},
	}
	return env
}
