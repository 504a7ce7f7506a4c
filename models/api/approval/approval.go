package approvalapimodels

import (
	"marketplace-backend/models"
	apimodels "marketplace-backend/models/api"
	dbmodels "marketplace-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

type TransitionRequest struct {
	To           models.ApprovalStatus `json:"to"`            // Целевой статус
	Note         string                `json:"note"`          // Комментарий администратора
	ExpectedFrom models.ApprovalStatus `json:"expected_from"` // Статус, который видел администратор (необязательно)
}

func (r TransitionRequest) Validate() error {
	if r.To == "" {
		return errors.New("не указан целевой статус")
	}
	if !r.To.IsValid() {
		return errors.Errorf("неизвестный статус: %v", r.To)
	}
	if r.ExpectedFrom != "" && !r.ExpectedFrom.IsValid() {
		return errors.Errorf("неизвестный статус: %v", r.ExpectedFrom)
	}
	return nil
}

// NoteRequest тело запросов approve/reject
type NoteRequest struct {
	Note         string                `json:"note"`
	ExpectedFrom models.ApprovalStatus `json:"expected_from"`
}

type ListFilter struct {
	apimodels.Pagination
	Status models.ApprovalStatus `json:"status"`
}

func (f ListFilter) Validate() error {
	if f.Status != "" && !f.Status.IsValid() {
		return errors.Errorf("неизвестный статус: %v", f.Status)
	}
	return nil
}

type EntityView struct {
	Kind         models.EntityKind     `json:"kind"`
	ID           string                `json:"id"`
	OwnerID      string                `json:"owner_id"`
	Status       models.ApprovalStatus `json:"status"`
	StatusName   string                `json:"status_name"`
	ReviewerNote string                `json:"reviewer_note"`
	ReviewedBy   string                `json:"reviewed_by,omitempty"`
	SubmittedAt  time.Time             `json:"submitted_at"`
	ReviewedAt   *time.Time            `json:"reviewed_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	IsActive     *bool                 `json:"is_active,omitempty"`
	IsOnline     *bool                 `json:"is_online,omitempty"`
}

func EntityConvert(kind models.EntityKind, rec dbmodels.ApprovableRecord) EntityView {
	return EntityView{
		Kind:         kind,
		ID:           rec.ID,
		OwnerID:      rec.OwnerID,
		Status:       rec.Status,
		StatusName:   rec.Status.ToHuman(),
		ReviewerNote: rec.ReviewerNote,
		ReviewedBy:   rec.ReviewedBy,
		SubmittedAt:  rec.CreatedAt,
		ReviewedAt:   rec.ReviewedAt,
		UpdatedAt:    rec.UpdatedAt,
		IsActive:     rec.IsActive,
		IsOnline:     rec.IsOnline,
	}
}

type HistoryView struct {
	ID             string                `json:"id"`
	EntityKind     models.EntityKind     `json:"entity_kind"`
	EntityID       string                `json:"entity_id"`
	FromStatus     models.ApprovalStatus `json:"from_status"`
	FromStatusName string                `json:"from_status_name"`
	ToStatus       models.ApprovalStatus `json:"to_status"`
	ToStatusName   string                `json:"to_status_name"`
	Note           *string               `json:"note"`
	PrincipalID    string                `json:"principal_id"`
	PrincipalRole  models.UserRole       `json:"principal_role"`
	CreatedAt      time.Time             `json:"created_at"`
}

func HistoryConvert(rec dbmodels.TransitionAudit) HistoryView {
	return HistoryView{
		ID:             rec.ID,
		EntityKind:     rec.EntityKind,
		EntityID:       rec.EntityID,
		FromStatus:     rec.FromStatus,
		FromStatusName: rec.FromStatus.ToHuman(),
		ToStatus:       rec.ToStatus,
		ToStatusName:   rec.ToStatus.ToHuman(),
		Note:           rec.Note,
		PrincipalID:    rec.PrincipalID,
		PrincipalRole:  rec.PrincipalRole,
		CreatedAt:      rec.CreatedAt,
	}
}

func (h HistoryView) GetNote() string {
	if h.Note == nil {
		return ""
	}
	return *h.Note
}

type EdgeView struct {
	From         models.ApprovalStatus `json:"from"`
	To           models.ApprovalStatus `json:"to"`
	NoteRequired bool                  `json:"note_required"`
}

type KindView struct {
	Kind    models.EntityKind         `json:"kind"`
	Name    string                    `json:"name"`
	Initial models.ApprovalStatus     `json:"initial"`
	Edges   []EdgeView                `json:"edges"`
	Flags   []models.AvailabilityFlag `json:"flags"`
}

type ToggleRequest struct {
	Value *bool `json:"value"`
}

func (r ToggleRequest) Validate() error {
	if r.Value == nil {
		return errors.New("не указано значение признака")
	}
	return nil
}
