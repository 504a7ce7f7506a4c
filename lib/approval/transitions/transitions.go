package transitions

import (
	"marketplace-backend/models"
)

type Edge struct {
	From         models.ApprovalStatus
	To           models.ApprovalStatus
	NoteRequired bool
}

// Table таблица допустимых переходов для вида сущности
type Table struct {
	Initial models.ApprovalStatus
	edges   map[models.ApprovalStatus][]Edge
}

func newTable(initial models.ApprovalStatus, edges ...Edge) Table {
	t := Table{
		Initial: initial,
		edges:   map[models.ApprovalStatus][]Edge{},
	}
	for _, e := range edges {
		t.edges[e.From] = append(t.edges[e.From], e)
	}
	return t
}

// Next переходы, доступные за один шаг из текущего статуса
func (t Table) Next(current models.ApprovalStatus) []Edge {
	result := make([]Edge, len(t.edges[current]))
	copy(result, t.edges[current])
	return result
}

func (t Table) Edge(from, to models.ApprovalStatus) (Edge, bool) {
	for _, e := range t.edges[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// IsTerminal из статуса нет ни одного перехода
func (t Table) IsTerminal(status models.ApprovalStatus) bool {
	return len(t.edges[status]) == 0
}

// Edges все переходы таблицы, упорядоченные по исходному статусу
func (t Table) Edges() []Edge {
	result := []Edge{}
	for _, from := range statusOrder {
		result = append(result, t.edges[from]...)
	}
	return result
}

var statusOrder = []models.ApprovalStatus{
	models.StatusNew,
	models.StatusPending,
	models.StatusInProgress,
	models.StatusApproved,
	models.StatusRejected,
	models.StatusCompleted,
	models.StatusCancelled,
}

// binaryApproval pending -> approved/rejected, возврат на рассмотрение только через pending
func binaryApproval(rejectNoteRequired bool) Table {
	return newTable(models.StatusPending,
		Edge{From: models.StatusPending, To: models.StatusApproved},
		Edge{From: models.StatusPending, To: models.StatusRejected, NoteRequired: rejectNoteRequired},
		Edge{From: models.StatusApproved, To: models.StatusPending, NoteRequired: true},
		Edge{From: models.StatusRejected, To: models.StatusPending, NoteRequired: true},
	)
}

func nominationReview() Table {
	return newTable(models.StatusPending,
		Edge{From: models.StatusPending, To: models.StatusApproved},
		Edge{From: models.StatusPending, To: models.StatusRejected, NoteRequired: true},
	)
}

func requestLifecycle() Table {
	return newTable(models.StatusNew,
		Edge{From: models.StatusNew, To: models.StatusInProgress},
		Edge{From: models.StatusNew, To: models.StatusCancelled, NoteRequired: true},
		Edge{From: models.StatusInProgress, To: models.StatusCompleted},
		Edge{From: models.StatusInProgress, To: models.StatusApproved},
		Edge{From: models.StatusInProgress, To: models.StatusCancelled, NoteRequired: true},
	)
}

var tables = map[models.EntityKind]Table{
	models.KindDeliveryAgent:   binaryApproval(false),
	models.KindServiceProvider: binaryApproval(true),
	models.KindFarmerProduct:   binaryApproval(false),
	models.KindTaxiVehicle:     binaryApproval(false),
	models.KindRecyclingRate:   binaryApproval(false),
	models.KindVideo:           binaryApproval(true),
	models.KindNomination:      nominationReview(),
	models.KindServiceRequest:  requestLifecycle(),
}

func For(kind models.EntityKind) (Table, bool) {
	t, ok := tables[kind]
	return t, ok
}
