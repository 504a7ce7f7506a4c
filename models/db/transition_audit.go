package dbmodels

import (
	"marketplace-backend/models"
)

// TransitionAudit запись журнала смены статусов, только добавление
type TransitionAudit struct {
	BaseModel
	Seq           int64                 `gorm:"autoIncrement;uniqueIndex"`
	EntityKind    models.EntityKind     `gorm:"type:varchar(32);index:idx_audit_entity"`
	EntityID      string                `gorm:"type:varchar(36);index:idx_audit_entity"`
	FromStatus    models.ApprovalStatus `gorm:"type:varchar(32)"`
	ToStatus      models.ApprovalStatus `gorm:"type:varchar(32)"`
	Note          *string
	PrincipalID   string          `gorm:"type:varchar(36)"`
	PrincipalRole models.UserRole `gorm:"type:varchar(32)"`
}
