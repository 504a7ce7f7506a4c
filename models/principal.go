package models

import "time"

// Principal пользователь, от имени которого выполняется операция
type Principal struct {
	UserID string
	Role   UserRole
}

// TransitionEvent событие успешной смены статуса
type TransitionEvent struct {
	Kind        EntityKind
	EntityID    string
	OwnerID     string
	From        ApprovalStatus
	To          ApprovalStatus
	Note        string
	PrincipalID string
	At          time.Time
}
