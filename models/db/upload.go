package dbmodels

import (
	"marketplace-backend/models"
)

type UploadSession struct {
	BaseModel
	OwnerID          string                     `gorm:"type:varchar(36);index"`
	Status           models.UploadSessionStatus `gorm:"type:varchar(16);index"`
	Title            string
	Description      string
	OriginalName     string
	TotalSize        int64
	TotalChunks      int
	FailedChunkIndex *int
	FailReason       string
	VideoID          string `gorm:"type:varchar(36)"`
}

type UploadChunk struct {
	BaseModel
	SessionID  string `gorm:"type:varchar(36);uniqueIndex:idx_upload_chunk"`
	ChunkIndex int    `gorm:"uniqueIndex:idx_upload_chunk"`
	Size       int64
	ObjectKey  string
}
