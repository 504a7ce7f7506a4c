package apperrors

import (
	"fmt"

	"marketplace-backend/models"
)

// NotFoundError сущность не найдена
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%v %v не найден(а)", e.Kind, e.ID)
}

// UnauthorizedError у пользователя нет прав на операцию
type UnauthorizedError struct {
	UserID string
	Role   models.UserRole
	Kind   models.EntityKind
}

func (e UnauthorizedError) Error() string {
	return fmt.Sprintf("пользователь %v (%v) не может согласовывать: %v", e.UserID, e.Role.ToHuman(), e.Kind.ToHuman())
}

// IllegalTransitionError переход отсутствует в таблице переходов
type IllegalTransitionError struct {
	Kind models.EntityKind
	From models.ApprovalStatus
	To   models.ApprovalStatus
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf("недопустимый переход %v -> %v для: %v", e.From, e.To, e.Kind.ToHuman())
}

// MissingNoteError для перехода обязателен комментарий
type MissingNoteError struct {
	Kind models.EntityKind
	From models.ApprovalStatus
	To   models.ApprovalStatus
}

func (e MissingNoteError) Error() string {
	return fmt.Sprintf("для перехода %v -> %v необходимо указать комментарий", e.From, e.To)
}

// ConcurrentModificationError статус изменен другим запросом
type ConcurrentModificationError struct {
	Kind     models.EntityKind
	ID       string
	Expected models.ApprovalStatus
	Actual   models.ApprovalStatus
}

func (e ConcurrentModificationError) Error() string {
	if e.Actual == "" {
		return fmt.Sprintf("статус %v %v был изменен другим пользователем, обновите данные", e.Kind, e.ID)
	}
	return fmt.Sprintf("статус %v %v был изменен другим пользователем (ожидался %v, текущий %v), обновите данные",
		e.Kind, e.ID, e.Expected, e.Actual)
}

// InvalidStateError операция невозможна в текущем статусе
type InvalidStateError struct {
	Kind   models.EntityKind
	ID     string
	Status models.ApprovalStatus
	Op     string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("операция \"%v\" недоступна в статусе \"%v\"", e.Op, e.Status.ToHuman())
}

// UnsupportedToggleError у вида сущности нет такого признака
type UnsupportedToggleError struct {
	Kind models.EntityKind
	Flag models.AvailabilityFlag
}

func (e UnsupportedToggleError) Error() string {
	return fmt.Sprintf("признак %v не поддерживается для: %v", e.Flag, e.Kind.ToHuman())
}

// UploadSessionStateError сессия загрузки уже завершена или прервана
type UploadSessionStateError struct {
	SessionID string
	Status    models.UploadSessionStatus
}

func (e UploadSessionStateError) Error() string {
	return fmt.Sprintf("сессия загрузки %v в статусе %v, прием чанков невозможен", e.SessionID, e.Status)
}

// ValidationError некорректные данные запроса
type ValidationError struct {
	Err error
}

func (e ValidationError) Error() string {
	return e.Err.Error()
}

func (e ValidationError) Unwrap() error {
	return e.Err
}
