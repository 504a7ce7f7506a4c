package auditstore

import (
	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"

	"gorm.io/gorm"
)

// Provider журнал переходов. Изменение и удаление записей не предусмотрено
type Provider interface {
	Create(rec dbmodels.TransitionAudit) (id string, err error)
	List(kind models.EntityKind, entityID string) (list []dbmodels.TransitionAudit, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.TransitionAudit) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(kind models.EntityKind, entityID string) (list []dbmodels.TransitionAudit, err error) {
	list = []dbmodels.TransitionAudit{}
	err = i.db.
		Where("entity_kind = ?", kind).
		Where("entity_id = ?", entityID).
		Order("created_at ASC").
		Order("seq ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
