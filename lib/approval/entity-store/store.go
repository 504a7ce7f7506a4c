package entitystore

import (
	"time"

	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec interface{}) error
	GetByID(kind models.EntityKind, id string) (*dbmodels.ApprovableRecord, error)
	// CompareAndSetStatus меняет статус, только если текущий статус равен from
	CompareAndSetStatus(kind models.EntityKind, id string, from models.ApprovalStatus, upd dbmodels.StatusUpdate) (bool, error)
	// SetFlag меняет признак доступности, только если сущность одобрена
	SetFlag(kind models.EntityKind, id string, flag models.AvailabilityFlag, value bool) (bool, error)
	List(kind models.EntityKind, status models.ApprovalStatus, page, limit int) ([]dbmodels.ApprovableRecord, int64, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

var baseColumns = []string{"id", "owner_id", "status", "reviewer_note", "reviewed_at", "reviewed_by", "created_at", "updated_at"}

func columns(kind models.EntityKind) []string {
	result := append([]string{}, baseColumns...)
	for _, flag := range kind.Flags() {
		result = append(result, string(flag))
	}
	return result
}

func (i impl) Create(rec interface{}) error {
	return i.db.Create(rec).Error
}

func (i impl) GetByID(kind models.EntityKind, id string) (*dbmodels.ApprovableRecord, error) {
	rec := dbmodels.ApprovableRecord{}
	err := i.db.
		Table(kind.Table()).
		Select(columns(kind)).
		Where("id = ?", id).
		Take(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) CompareAndSetStatus(kind models.EntityKind, id string, from models.ApprovalStatus, upd dbmodels.StatusUpdate) (bool, error) {
	updMap := map[string]interface{}{
		"status":        upd.To,
		"reviewer_note": upd.Note,
		"reviewed_at":   upd.ReviewedAt,
		"reviewed_by":   upd.ReviewedBy,
		"updated_at":    upd.ReviewedAt,
	}
	tx := i.db.
		Table(kind.Table()).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) SetFlag(kind models.EntityKind, id string, flag models.AvailabilityFlag, value bool) (bool, error) {
	updMap := map[string]interface{}{
		string(flag): value,
		"updated_at": time.Now(),
	}
	tx := i.db.
		Table(kind.Table()).
		Where("id = ?", id).
		Where("status = ?", models.StatusApproved).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) List(kind models.EntityKind, status models.ApprovalStatus, page, limit int) (list []dbmodels.ApprovableRecord, rowCount int64, err error) {
	list = []dbmodels.ApprovableRecord{}
	query := func() *gorm.DB {
		tx := i.db.Table(kind.Table())
		if status != "" {
			tx = tx.Where("status = ?", status)
		}
		return tx
	}
	err = query().Count(&rowCount).Error
	if err != nil {
		return nil, 0, err
	}
	if rowCount == 0 {
		return list, 0, nil
	}
	err = query().
		Select(columns(kind)).
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, 0, err
	}
	return list, rowCount, nil
}
