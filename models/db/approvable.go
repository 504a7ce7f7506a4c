package dbmodels

import (
	"marketplace-backend/models"
	"time"
)

// ApprovableModel общие поля сущностей, проходящих согласование
type ApprovableModel struct {
	BaseModel
	OwnerID      string                `gorm:"type:varchar(36);index"`
	Status       models.ApprovalStatus `gorm:"type:varchar(32);index"`
	ReviewerNote string
	ReviewedAt   *time.Time
	ReviewedBy   string `gorm:"type:varchar(36)"`
}

// AvailabilityModel признаки доступности, не зависят от статуса согласования
type AvailabilityModel struct {
	IsActive bool `gorm:"default:false"`
}

type OnlineModel struct {
	IsOnline bool `gorm:"default:false"`
}

// ApprovableRecord срез общих колонок любой согласуемой таблицы
type ApprovableRecord struct {
	ID           string
	OwnerID      string
	Status       models.ApprovalStatus
	ReviewerNote string
	ReviewedAt   *time.Time
	ReviewedBy   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	IsActive     *bool
	IsOnline     *bool
}

// StatusUpdate данные для смены статуса
type StatusUpdate struct {
	To         models.ApprovalStatus
	Note       string
	ReviewedBy string
	ReviewedAt time.Time
}
