package videoapimodels

import (
	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"
	"time"

	"github.com/pkg/errors"
)

// ChunkData чанк видео, метаданные передаются только в нулевом чанке
type ChunkData struct {
	SessionID    string
	ChunkIndex   int
	TotalChunks  int
	Data         []byte
	Title        string
	Description  string
	OriginalName string
	TotalSize    int64
}

func (c ChunkData) Validate() error {
	if c.SessionID == "" {
		return errors.New("не указан идентификатор сессии загрузки")
	}
	if len(c.SessionID) > 36 {
		return errors.New("некорректный идентификатор сессии загрузки")
	}
	if c.TotalChunks <= 0 {
		return errors.New("некорректное количество чанков")
	}
	if c.ChunkIndex < 0 || c.ChunkIndex >= c.TotalChunks {
		return errors.Errorf("некорректный номер чанка: %v из %v", c.ChunkIndex, c.TotalChunks)
	}
	if len(c.Data) == 0 {
		return errors.New("пустой чанк")
	}
	if c.ChunkIndex == 0 {
		if c.Title == "" {
			return errors.New("не указано название видео")
		}
		if c.TotalSize <= 0 {
			return errors.New("не указан размер файла")
		}
	}
	return nil
}

type ChunkAck struct {
	SessionID      string                     `json:"session_id"`
	ChunkIndex     int                        `json:"chunk_index"`
	ReceivedChunks int64                      `json:"received_chunks"`
	TotalChunks    int                        `json:"total_chunks"`
	Status         models.UploadSessionStatus `json:"status"`
	VideoID        string                     `json:"video_id,omitempty"`
}

type FailRequest struct {
	ChunkIndex int    `json:"chunk_index"`
	Reason     string `json:"reason"`
}

func (r FailRequest) Validate() error {
	if r.ChunkIndex < 0 {
		return errors.New("некорректный номер чанка")
	}
	return nil
}

type SessionView struct {
	ID               string                     `json:"id"`
	Status           models.UploadSessionStatus `json:"status"`
	Title            string                     `json:"title"`
	OriginalName     string                     `json:"original_name"`
	TotalSize        int64                      `json:"total_size"`
	TotalChunks      int                        `json:"total_chunks"`
	ReceivedChunks   int64                      `json:"received_chunks"`
	FailedChunkIndex *int                       `json:"failed_chunk_index,omitempty"`
	FailReason       string                     `json:"fail_reason,omitempty"`
	VideoID          string                     `json:"video_id,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
}

func SessionConvert(rec dbmodels.UploadSession, received int64) SessionView {
	return SessionView{
		ID:               rec.ID,
		Status:           rec.Status,
		Title:            rec.Title,
		OriginalName:     rec.OriginalName,
		TotalSize:        rec.TotalSize,
		TotalChunks:      rec.TotalChunks,
		ReceivedChunks:   received,
		FailedChunkIndex: rec.FailedChunkIndex,
		FailReason:       rec.FailReason,
		VideoID:          rec.VideoID,
		CreatedAt:        rec.CreatedAt,
	}
}
