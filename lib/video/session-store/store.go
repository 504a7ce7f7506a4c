package uploadsessionstore

import (
	"time"

	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	// Create создает сессию, если сессии с таким идентификатором еще нет
	Create(rec *dbmodels.UploadSession) error
	GetByID(id string) (*dbmodels.UploadSession, error)
	// UpsertChunk повторно принятый чанк обновляет существующую запись
	UpsertChunk(rec dbmodels.UploadChunk) error
	CountChunks(sessionID string) (int64, error)
	// CompareAndSetStatus меняет статус, только если текущий статус равен from
	CompareAndSetStatus(id string, from models.UploadSessionStatus, updMap map[string]interface{}) (bool, error)
	ListStale(before time.Time) ([]dbmodels.UploadSession, error)
	DeleteChunks(sessionID string) error
	GetVideo(id string) (*dbmodels.Video, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec *dbmodels.UploadSession) error {
	return i.db.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec).
		Error
}

func (i impl) GetByID(id string) (*dbmodels.UploadSession, error) {
	rec := dbmodels.UploadSession{}
	err := i.db.
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

func (i impl) UpsertChunk(rec dbmodels.UploadChunk) error {
	return i.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "chunk_index"}},
			DoUpdates: clause.AssignmentColumns([]string{"size", "object_key", "updated_at"}),
		}).
		Create(&rec).
		Error
}

func (i impl) CountChunks(sessionID string) (int64, error) {
	var count int64
	err := i.db.
		Model(&dbmodels.UploadChunk{}).
		Where("session_id = ?", sessionID).
		Count(&count).
		Error
	return count, err
}

func (i impl) CompareAndSetStatus(id string, from models.UploadSessionStatus, updMap map[string]interface{}) (bool, error) {
	tx := i.db.
		Model(&dbmodels.UploadSession{}).
		Where("id = ?", id).
		Where("status = ?", from).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (i impl) ListStale(before time.Time) ([]dbmodels.UploadSession, error) {
	list := []dbmodels.UploadSession{}
	err := i.db.
		Where("status = ?", models.UploadStatusUploading).
		Where("updated_at < ?", before).
		Order("updated_at").
		Find(&list).
		Error
	return list, err
}

func (i impl) DeleteChunks(sessionID string) error {
	return i.db.
		Where("session_id = ?", sessionID).
		Delete(&dbmodels.UploadChunk{}).
		Error
}

func (i impl) GetVideo(id string) (*dbmodels.Video, error) {
	rec := dbmodels.Video{}
	err := i.db.
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
