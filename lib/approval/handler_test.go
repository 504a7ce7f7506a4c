package approvalhandler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketplace-backend/lib/approval/transitions"
	apperrors "marketplace-backend/lib/utils/app-errors"
	"marketplace-backend/models"
	approvalapimodels "marketplace-backend/models/api/approval"
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var (
	admin    = models.Principal{UserID: "admin-1", Role: models.UserRoleAdmin}
	customer = models.Principal{UserID: "customer-1", Role: models.UserRoleCustomer}
)

func allStatuses() []models.ApprovalStatus {
	return []models.ApprovalStatus{
		models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusNew,
		models.StatusInProgress, models.StatusCompleted, models.StatusCancelled,
	}
}

func TestTransition(t *testing.T) {
	t.Run(`approve pending entity with note`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindServiceProvider, dbmodels.ApprovableRecord{ID: "sp-1", OwnerID: "owner-1", Status: models.StatusPending})

		view, err := env.impl.Transition(TransitionData{
			Kind:      models.KindServiceProvider,
			EntityID:  "sp-1",
			To:        models.StatusApproved,
			Principal: admin,
			Note:      "looks good",
		})
		require.Nil(t, err)
		require.Equal(t, models.StatusApproved, view.Status)
		require.NotNil(t, view.ReviewedAt)
		require.Equal(t, env.now, *view.ReviewedAt)
		require.Equal(t, "looks good", view.ReviewerNote)
		require.Equal(t, models.StatusApproved, env.entities.status(models.KindServiceProvider, "sp-1"))

		require.Len(t, env.audit.entries, 1)
		entry := env.audit.entries[0]
		require.Equal(t, models.StatusPending, entry.FromStatus)
		require.Equal(t, models.StatusApproved, entry.ToStatus)
		require.NotNil(t, entry.Note)
		require.Equal(t, "looks good", *entry.Note)
		require.Equal(t, "admin-1", entry.PrincipalID)

		require.Len(t, env.notifier.events, 1)
		require.Equal(t, "owner-1", env.notifier.events[0].OwnerID)
	})

	t.Run(`every edge missing from the table is rejected`, func(t *testing.T) {
		for _, kind := range models.AllKinds {
			table, _ := transitions.For(kind)
			for _, from := range allStatuses() {
				for _, to := range allStatuses() {
					if from == to {
						continue
					}
					if _, ok := table.Edge(from, to); ok {
						continue
					}
					env := newTestEnv()
					env.entities.put(kind, dbmodels.ApprovableRecord{ID: "e-1", Status: from})
					_, err := env.impl.Transition(TransitionData{Kind: kind, EntityID: "e-1", To: to, Principal: admin, Note: "note"})
					var illegal apperrors.IllegalTransitionError
					require.True(t, errors.As(err, &illegal), "%v %v->%v", kind, from, to)
					require.Equal(t, from, env.entities.status(kind, "e-1"))
					require.Empty(t, env.audit.entries)
				}
			}
		}
	})

	t.Run(`approved to rejected must go through pending`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindTaxiVehicle, dbmodels.ApprovableRecord{ID: "v-1", Status: models.StatusApproved})
		_, err := env.impl.Transition(TransitionData{Kind: models.KindTaxiVehicle, EntityID: "v-1", To: models.StatusRejected, Principal: admin})
		var illegal apperrors.IllegalTransitionError
		require.True(t, errors.As(err, &illegal))

		_, err = env.impl.Transition(TransitionData{Kind: models.KindTaxiVehicle, EntityID: "v-1", To: models.StatusPending, Principal: admin, Note: "документы просрочены"})
		require.Nil(t, err)
		_, err = env.impl.Transition(TransitionData{Kind: models.KindTaxiVehicle, EntityID: "v-1", To: models.StatusRejected, Principal: admin})
		require.Nil(t, err)
		require.Equal(t, models.StatusRejected, env.entities.status(models.KindTaxiVehicle, "v-1"))
		require.Len(t, env.audit.entries, 2)
	})

	t.Run(`required note missing or blank`, func(t *testing.T) {
		for _, kind := range models.AllKinds {
			table, _ := transitions.For(kind)
			for _, edge := range table.Edges() {
				if !edge.NoteRequired {
					continue
				}
				for _, note := range []string{"", "   ", "\t\n"} {
					env := newTestEnv()
					env.entities.put(kind, dbmodels.ApprovableRecord{ID: "e-1", Status: edge.From})
					_, err := env.impl.Transition(TransitionData{Kind: kind, EntityID: "e-1", To: edge.To, Principal: admin, Note: note})
					var missing apperrors.MissingNoteError
					require.True(t, errors.As(err, &missing), "%v %v->%v", kind, edge.From, edge.To)
					require.Equal(t, edge.From, env.entities.status(kind, "e-1"))
					require.Empty(t, env.audit.entries)
				}
			}
		}
	})

	t.Run(`nomination rejection requires note, agent rejection does not`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindNomination, dbmodels.ApprovableRecord{ID: "n-1", Status: models.StatusPending})
		env.entities.put(models.KindDeliveryAgent, dbmodels.ApprovableRecord{ID: "a-1", Status: models.StatusPending})

		_, err := env.impl.Transition(TransitionData{Kind: models.KindNomination, EntityID: "n-1", To: models.StatusRejected, Principal: admin})
		var missing apperrors.MissingNoteError
		require.True(t, errors.As(err, &missing))

		view, err := env.impl.Transition(TransitionData{Kind: models.KindDeliveryAgent, EntityID: "a-1", To: models.StatusRejected, Principal: admin})
		require.Nil(t, err)
		require.Equal(t, models.StatusRejected, view.Status)
		require.Nil(t, env.audit.entries[0].Note)
	})

	t.Run(`same target status is a no-op`, func(t *testing.T) {
		env := newTestEnv()
		reviewedAt := env.now.Add(-time.Hour)
		env.entities.put(models.KindFarmerProduct, dbmodels.ApprovableRecord{ID: "p-1", Status: models.StatusApproved, ReviewedAt: &reviewedAt})

		view, err := env.impl.Transition(TransitionData{Kind: models.KindFarmerProduct, EntityID: "p-1", To: models.StatusApproved, Principal: admin})
		require.Nil(t, err)
		require.Equal(t, models.StatusApproved, view.Status)
		require.Equal(t, reviewedAt, *view.ReviewedAt)
		require.Empty(t, env.audit.entries)
		require.Empty(t, env.notifier.events)
	})

	t.Run(`unknown entity and unknown kind`, func(t *testing.T) {
		env := newTestEnv()
		_, err := env.impl.Transition(TransitionData{Kind: models.KindVideo, EntityID: "missing", To: models.StatusApproved, Principal: admin})
		var notFound apperrors.NotFoundError
		require.True(t, errors.As(err, &notFound))

		_, err = env.impl.Transition(TransitionData{Kind: models.EntityKind("rental"), EntityID: "x", To: models.StatusApproved, Principal: admin})
		require.True(t, errors.As(err, &notFound))
	})

	t.Run(`principal without reviewer authority`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindVideo, dbmodels.ApprovableRecord{ID: "vid-1", Status: models.StatusPending})
		_, err := env.impl.Transition(TransitionData{Kind: models.KindVideo, EntityID: "vid-1", To: models.StatusApproved, Principal: customer})
		var unauthorized apperrors.UnauthorizedError
		require.True(t, errors.As(err, &unauthorized))
		require.Equal(t, models.StatusPending, env.entities.status(models.KindVideo, "vid-1"))
	})

	t.Run(`stale expected status`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindRecyclingRate, dbmodels.ApprovableRecord{ID: "r-1", Status: models.StatusRejected})
		_, err := env.impl.Transition(TransitionData{
			Kind:         models.KindRecyclingRate,
			EntityID:     "r-1",
			To:           models.StatusApproved,
			Principal:    admin,
			ExpectedFrom: models.StatusPending,
		})
		var concurrent apperrors.ConcurrentModificationError
		require.True(t, errors.As(err, &concurrent))
		require.Equal(t, models.StatusRejected, concurrent.Actual)
	})

	t.Run(`audit failure rolls back status`, func(t *testing.T) {
		env := newTestEnv()
		env.audit.err = errors.New("disk full")
		env.entities.put(models.KindDeliveryAgent, dbmodels.ApprovableRecord{ID: "a-1", Status: models.StatusPending})
		_, err := env.impl.Transition(TransitionData{Kind: models.KindDeliveryAgent, EntityID: "a-1", To: models.StatusApproved, Principal: admin})
		require.NotNil(t, err)
		require.Equal(t, models.StatusPending, env.entities.status(models.KindDeliveryAgent, "a-1"))
		require.Empty(t, env.notifier.events)
	})

	t.Run(`service request lifecycle`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindServiceRequest, dbmodels.ApprovableRecord{ID: "sr-1", Status: models.StatusNew})
		for _, to := range []models.ApprovalStatus{models.StatusInProgress, models.StatusCompleted} {
			_, err := env.impl.Transition(TransitionData{Kind: models.KindServiceRequest, EntityID: "sr-1", To: to, Principal: admin})
			require.Nil(t, err)
		}
		_, err := env.impl.Transition(TransitionData{Kind: models.KindServiceRequest, EntityID: "sr-1", To: models.StatusCancelled, Principal: admin, Note: "поздно"})
		var illegal apperrors.IllegalTransitionError
		require.True(t, errors.As(err, &illegal))

		history, err := env.impl.History(admin, models.KindServiceRequest, "sr-1")
		require.Nil(t, err)
		require.Len(t, history, 2)
		require.Equal(t, models.StatusNew, history[0].FromStatus)
		require.Equal(t, models.StatusCompleted, history[1].ToStatus)
	})
}

func TestConcurrentTransition(t *testing.T) {
	t.Run(`compare-and-swap lets exactly one request win`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindTaxiVehicle, dbmodels.ApprovableRecord{ID: "v-1", Status: models.StatusPending})
		// оба запроса успевают прочитать pending до записи
		readers := sync.WaitGroup{}
		readers.Add(2)
		var reads int32
		env.entities.onRead = func() {
			if atomic.AddInt32(&reads, 1) <= 2 {
				readers.Done()
				readers.Wait()
			}
		}

		targets := []models.ApprovalStatus{models.StatusApproved, models.StatusRejected}
		errs := make([]error, len(targets))
		wg := sync.WaitGroup{}
		for idx, to := range targets {
			wg.Add(1)
			go func(idx int, to models.ApprovalStatus) {
				defer wg.Done()
				_, errs[idx] = env.impl.Transition(TransitionData{Kind: models.KindTaxiVehicle, EntityID: "v-1", To: to, Principal: admin})
			}(idx, to)
		}
		wg.Wait()

		successCount := 0
		concurrentCount := 0
		for _, err := range errs {
			var concurrent apperrors.ConcurrentModificationError
			switch {
			case err == nil:
				successCount++
			case errors.As(err, &concurrent):
				concurrentCount++
			}
		}
		require.Equal(t, 1, successCount)
		require.Equal(t, 1, concurrentCount)
		require.Len(t, env.audit.entries, 1)
	})

	t.Run(`same source status from two sessions`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindNomination, dbmodels.ApprovableRecord{ID: "n-1", Status: models.StatusPending})

		errs := make([]error, 2)
		wg := sync.WaitGroup{}
		for idx := range errs {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, errs[idx] = env.impl.Transition(TransitionData{
					Kind:         models.KindNomination,
					EntityID:     "n-1",
					To:           models.StatusApproved,
					Principal:    admin,
					ExpectedFrom: models.StatusPending,
				})
			}(idx)
		}
		wg.Wait()

		successCount := 0
		for _, err := range errs {
			if err == nil {
				successCount++
				continue
			}
			var concurrent apperrors.ConcurrentModificationError
			require.True(t, errors.As(err, &concurrent))
		}
		// второй запрос либо проигрывает CAS, либо видит уже одобренную запись и завершается без изменений
		require.GreaterOrEqual(t, successCount, 1)
		require.Len(t, env.audit.entries, 1)
		require.Len(t, env.notifier.events, 1)
	})
}

func TestRetriedTransition(t *testing.T) {
	t.Run(`retry with expected status after success is a no-op`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindDeliveryAgent, dbmodels.ApprovableRecord{ID: "a-1", OwnerID: "owner-1", Status: models.StatusPending})
		data := TransitionData{
			Kind:         models.KindDeliveryAgent,
			EntityID:     "a-1",
			To:           models.StatusApproved,
			Principal:    admin,
			ExpectedFrom: models.StatusPending,
		}

		first, err := env.impl.Transition(data)
		require.Nil(t, err)
		require.Equal(t, models.StatusApproved, first.Status)

		second, err := env.impl.Transition(data)
		require.Nil(t, err)
		require.Equal(t, models.StatusApproved, second.Status)
		require.Len(t, env.audit.entries, 1)
		require.Len(t, env.notifier.events, 1)
	})

	t.Run(`stale expected status for another target is rejected`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindDeliveryAgent, dbmodels.ApprovableRecord{ID: "a-1", Status: models.StatusApproved})
		_, err := env.impl.Transition(TransitionData{
			Kind:         models.KindDeliveryAgent,
			EntityID:     "a-1",
			To:           models.StatusRejected,
			Principal:    admin,
			Note:         "документы просрочены",
			ExpectedFrom: models.StatusPending,
		})
		var concurrent apperrors.ConcurrentModificationError
		require.True(t, errors.As(err, &concurrent))
		require.Equal(t, models.StatusApproved, concurrent.Actual)
		require.Empty(t, env.audit.entries)
	})
}

func TestHistory(t *testing.T) {
	t.Run(`every transition is kept in order with its note`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindServiceProvider, dbmodels.ApprovableRecord{ID: "sp-1", OwnerID: "owner-1", Status: models.StatusPending})
		steps := []struct {
			to   models.ApprovalStatus
			note string
		}{
			{models.StatusApproved, "документы в порядке"},
			{models.StatusPending, "жалоба клиента, повторная проверка"},
			{models.StatusRejected, "лицензия отозвана"},
		}
		for n, step := range steps {
			env.now = env.now.Add(time.Minute)
			_, err := env.impl.Transition(TransitionData{
				Kind:      models.KindServiceProvider,
				EntityID:  "sp-1",
				To:        step.to,
				Principal: admin,
				Note:      step.note,
			})
			require.Nil(t, err, "шаг %v", n)
		}

		view, err := env.impl.Get(admin, models.KindServiceProvider, "sp-1")
		require.Nil(t, err)
		require.Equal(t, "лицензия отозвана", view.ReviewerNote)

		history, err := env.impl.History(admin, models.KindServiceProvider, "sp-1")
		require.Nil(t, err)
		require.Len(t, history, len(steps))
		from := models.StatusPending
		for n, step := range steps {
			require.Equal(t, from, history[n].FromStatus, "шаг %v", n)
			require.Equal(t, step.to, history[n].ToStatus, "шаг %v", n)
			require.Equal(t, step.note, history[n].GetNote(), "шаг %v", n)
			if n > 0 {
				require.True(t, history[n].CreatedAt.After(history[n-1].CreatedAt), "шаг %v", n)
			}
			from = step.to
		}
	})

	t.Run(`audit entry time equals reviewedAt`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindFarmerProduct, dbmodels.ApprovableRecord{ID: "p-1", Status: models.StatusPending})
		view, err := env.impl.Transition(TransitionData{
			Kind:      models.KindFarmerProduct,
			EntityID:  "p-1",
			To:        models.StatusApproved,
			Principal: admin,
		})
		require.Nil(t, err)
		require.Len(t, env.audit.entries, 1)
		require.Equal(t, env.now, env.audit.entries[0].CreatedAt)
		require.Equal(t, *view.ReviewedAt, env.audit.entries[0].CreatedAt)
	})
}

func TestReadSide(t *testing.T) {
	t.Run(`List is refreshed after invalidation`, func(t *testing.T) {
		env := newTestEnv()
		env.entities.put(models.KindVideo, dbmodels.ApprovableRecord{ID: "vid-1", Status: models.StatusPending})
		filter := approvalapimodels.ListFilter{Status: models.StatusPending}

		list, rowCount, err := env.impl.List(admin, models.KindVideo, filter)
		require.Nil(t, err)
		require.Len(t, list, 1)
		require.Equal(t, int64(1), rowCount)

		env.entities.put(models.KindVideo, dbmodels.ApprovableRecord{ID: "vid-2", Status: models.StatusPending})
		list, _, err = env.impl.List(admin, models.KindVideo, filter)
		require.Nil(t, err)
		require.Len(t, list, 1, "значение из кеша")

		env.impl.listCache.Invalidate(models.KindVideo)
		list, _, err = env.impl.List(admin, models.KindVideo, filter)
		require.Nil(t, err)
		require.Len(t, list, 2)
	})

	t.Run(`empty list stays empty`, func(t *testing.T) {
		env := newTestEnv()
		list, rowCount, err := env.impl.List(admin, models.KindRecyclingRate, approvalapimodels.ListFilter{Status: models.StatusApproved})
		require.Nil(t, err)
		require.Empty(t, list)
		require.Equal(t, int64(0), rowCount)
	})

	t.Run(`Kinds exposes transition tables`, func(t *testing.T) {
		env := newTestEnv()
		kinds := env.impl.Kinds(admin)
		require.Len(t, kinds, len(models.AllKinds))
		require.Empty(t, env.impl.Kinds(customer))
	})

	t.Run(`History of unknown entity`, func(t *testing.T) {
		env := newTestEnv()
		_, err := env.impl.History(admin, models.KindVideo, "missing")
		var notFound apperrors.NotFoundError
		require.True(t, errors.As(err, &notFound))
	})
}
