package videohandler

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path/filepath"
	"time"

	"marketplace-backend/db"
	entitystore "marketplace-backend/lib/approval/entity-store"
	"marketplace-backend/lib/approval/transitions"
	filestorage "marketplace-backend/lib/file-storage"
	notifyhandler "marketplace-backend/lib/notify"
	"marketplace-backend/lib/rbac"
	apperrors "marketplace-backend/lib/utils/app-errors"
	"marketplace-backend/lib/utils/helpers"
	"marketplace-backend/lib/utils/lock"
	uploadsessionstore "marketplace-backend/lib/video/session-store"
	"marketplace-backend/models"
	videoapimodels "marketplace-backend/models/api/video"
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Provider прием видео чанками. Собранное видео попадает на согласование
type Provider interface {
	ReceiveChunk(ctx context.Context, principal models.Principal, data videoapimodels.ChunkData) (*videoapimodels.ChunkAck, error)
	FailSession(ctx context.Context, principal models.Principal, sessionID string, request videoapimodels.FailRequest) (*videoapimodels.SessionView, error)
	GetSession(principal models.Principal, sessionID string) (*videoapimodels.SessionView, error)
	// OpenVideo файл видео для просмотра владельцем или согласующим
	OpenVideo(ctx context.Context, principal models.Principal, videoID string) (io.ReadCloser, *dbmodels.Video, error)
	// ExpireStale помечает брошенные сессии и удаляет их чанки
	ExpireStale(ctx context.Context, ttl time.Duration) (int, error)
}

var Instance Provider

type txFunc func(fn func(sessionStore uploadsessionstore.Provider, entityStore entitystore.Provider) error) error

func NewHandler() {
	Instance = impl{
		sessionStore: uploadsessionstore.NewInstance(db.DB),
		withTx: func(fn func(sessionStore uploadsessionstore.Provider, entityStore entitystore.Provider) error) error {
			return db.DB.Transaction(func(tx *gorm.DB) error {
				return fn(uploadsessionstore.NewInstance(tx), entitystore.NewInstance(tx))
			})
		},
		storage:     filestorage.Instance,
		access:      rbac.Instance,
		notifier:    notifyhandler.Instance,
		now:         time.Now,
		assembleTTL: 10 * time.Minute,
	}
}

type impl struct {
	sessionStore uploadsessionstore.Provider
	withTx       txFunc
	storage      filestorage.Provider
	access       rbac.Provider
	notifier     notifyhandler.Provider
	now          func() time.Time
	assembleTTL  time.Duration
}

func (i impl) getLogger(sessionID, userID string) *log.Entry {
	return log.
		WithField("session_id", sessionID).
		WithField("user_id", userID)
}

func (i impl) ReceiveChunk(ctx context.Context, principal models.Principal, data videoapimodels.ChunkData) (*videoapimodels.ChunkAck, error) {
	logger := i.getLogger(data.SessionID, principal.UserID).
		WithField("chunk_index", data.ChunkIndex)
	if !i.access.Allowed(principal.Role, models.KindVideo, models.SubmitPermission) {
		return nil, apperrors.UnauthorizedError{UserID: principal.UserID, Role: principal.Role, Kind: models.KindVideo}
	}
	if err := data.Validate(); err != nil {
		return nil, apperrors.ValidationError{Err: err}
	}
	session, err := i.getSession(principal, data.SessionID, data.ChunkIndex == 0)
	if err != nil {
		return nil, err
	}
	if session == nil {
		session, err = i.createSession(principal, data)
		if err != nil {
			return nil, err
		}
	}
	if session.TotalChunks != data.TotalChunks {
		return nil, apperrors.ValidationError{Err: errors.Errorf("количество чанков не совпадает с сессией: %v, ожидалось %v", data.TotalChunks, session.TotalChunks)}
	}
	if session.Status == models.UploadStatusCompleted {
		// повтор чанка после сборки, подтверждаем без изменений
		return i.ack(*session, data.ChunkIndex, int64(session.TotalChunks)), nil
	}
	if session.Status.IsFinal() {
		return nil, apperrors.UploadSessionStateError{SessionID: session.ID, Status: session.Status}
	}

	key, err := i.storage.PutChunk(ctx, session.ID, data.ChunkIndex, bytes.NewReader(data.Data), int64(len(data.Data)))
	if err != nil {
		logger.WithError(err).Error("ошибка сохранения чанка")
		return nil, err
	}
	err = i.sessionStore.UpsertChunk(dbmodels.UploadChunk{
		SessionID:  session.ID,
		ChunkIndex: data.ChunkIndex,
		Size:       int64(len(data.Data)),
		ObjectKey:  key,
	})
	if err != nil {
		logger.WithError(err).Error("ошибка сохранения записи чанка")
		return nil, errors.Wrap(err, "ошибка сохранения записи чанка")
	}
	_, err = i.sessionStore.CompareAndSetStatus(session.ID, models.UploadStatusUploading, map[string]interface{}{"updated_at": i.now()})
	if err != nil {
		logger.WithError(err).Warn("ошибка обновления сессии")
	}
	received, err := i.sessionStore.CountChunks(session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка подсчета чанков")
	}
	if received < int64(session.TotalChunks) {
		return i.ack(*session, data.ChunkIndex, received), nil
	}

	var completed *dbmodels.UploadSession
	locked, err := lock.WithDelay(ctx, "upload-session-"+session.ID, i.assembleTTL, func() error {
		var err error
		completed, err = i.complete(ctx, *session)
		return err
	})
	if err != nil {
		logger.WithError(err).Error("ошибка сборки видео")
		return nil, err
	}
	if !locked {
		return nil, errors.New("сборка видео уже выполняется, повторите запрос позже")
	}
	return i.ack(*completed, data.ChunkIndex, received), nil
}

func (i impl) getSession(principal models.Principal, sessionID string, allowMissing bool) (*dbmodels.UploadSession, error) {
	session, err := i.sessionStore.GetByID(sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения сессии загрузки")
	}
	if session == nil {
		if allowMissing {
			return nil, nil
		}
		return nil, apperrors.NotFoundError{Kind: "сессия загрузки", ID: sessionID}
	}
	// чужая сессия не видна
	if session.OwnerID != principal.UserID {
		return nil, apperrors.NotFoundError{Kind: "сессия загрузки", ID: sessionID}
	}
	return session, nil
}

func (i impl) createSession(principal models.Principal, data videoapimodels.ChunkData) (*dbmodels.UploadSession, error) {
	rec := dbmodels.UploadSession{
		BaseModel:    dbmodels.BaseModel{ID: data.SessionID},
		OwnerID:      principal.UserID,
		Status:       models.UploadStatusUploading,
		Title:        data.Title,
		Description:  data.Description,
		OriginalName: data.OriginalName,
		TotalSize:    data.TotalSize,
		TotalChunks:  data.TotalChunks,
	}
	if err := i.sessionStore.Create(&rec); err != nil {
		return nil, errors.Wrap(err, "ошибка создания сессии загрузки")
	}
	i.getLogger(rec.ID, principal.UserID).
		WithField("total_chunks", rec.TotalChunks).
		Info("сессия загрузки создана")
	// при параллельном нулевом чанке запись могла создаться другим запросом
	return i.getSession(principal, data.SessionID, false)
}

func (i impl) complete(ctx context.Context, session dbmodels.UploadSession) (*dbmodels.UploadSession, error) {
	logger := i.getLogger(session.ID, session.OwnerID)
	current, err := i.sessionStore.GetByID(session.ID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения сессии загрузки")
	}
	if current == nil {
		return nil, apperrors.NotFoundError{Kind: "сессия загрузки", ID: session.ID}
	}
	if current.Status != models.UploadStatusUploading {
		return current, nil
	}

	contentType := mime.TypeByExtension(filepath.Ext(session.OriginalName))
	key, size, err := i.storage.Assemble(ctx, session.ID, session.TotalChunks, contentType)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка сборки видео")
	}
	if session.TotalSize > 0 && size >= 0 && size != session.TotalSize {
		logger.
			WithField("expected_size", session.TotalSize).
			WithField("actual_size", size).
			Warn("размер собранного видео не совпадает с заявленным")
	}

	table, _ := transitions.For(models.KindVideo)
	video := dbmodels.Video{
		ApprovableModel: dbmodels.ApprovableModel{
			OwnerID: session.OwnerID,
			Status:  table.Initial,
		},
		Title:           session.Title,
		Description:     session.Description,
		OriginalName:    session.OriginalName,
		ObjectKey:       key,
		Size:            size,
		UploadSessionID: session.ID,
	}
	err = i.withTx(func(sessionStore uploadsessionstore.Provider, entityStore entitystore.Provider) error {
		if err := entityStore.Create(&video); err != nil {
			return errors.Wrap(err, "ошибка создания видео")
		}
		swapped, err := sessionStore.CompareAndSetStatus(session.ID, models.UploadStatusUploading, map[string]interface{}{
			"status":   models.UploadStatusCompleted,
			"video_id": video.ID,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка завершения сессии загрузки")
		}
		if !swapped {
			return apperrors.UploadSessionStateError{SessionID: session.ID, Status: current.Status}
		}
		return sessionStore.DeleteChunks(session.ID)
	})
	if err != nil {
		// чанки сохраняются, повтор последнего чанка снова запустит сборку
		return nil, err
	}
	if err := i.storage.RemoveSession(ctx, session.ID); err != nil {
		// видео уже сохранено, остатки чанков не мешают
		logger.WithError(err).Warn("ошибка удаления чанков")
	}
	logger.WithField("video_id", video.ID).Info("видео собрано и отправлено на согласование")
	i.notifier.EntitySubmitted(models.KindVideo, video.ID, session.OwnerID)

	session.Status = models.UploadStatusCompleted
	session.VideoID = video.ID
	return &session, nil
}

func (i impl) ack(session dbmodels.UploadSession, index int, received int64) *videoapimodels.ChunkAck {
	return &videoapimodels.ChunkAck{
		SessionID:      session.ID,
		ChunkIndex:     index,
		ReceivedChunks: received,
		TotalChunks:    session.TotalChunks,
		Status:         session.Status,
		VideoID:        session.VideoID,
	}
}

func (i impl) FailSession(ctx context.Context, principal models.Principal, sessionID string, request videoapimodels.FailRequest) (*videoapimodels.SessionView, error) {
	if err := request.Validate(); err != nil {
		return nil, apperrors.ValidationError{Err: err}
	}
	session, err := i.getSession(principal, sessionID, false)
	if err != nil {
		return nil, err
	}
	if session.Status != models.UploadStatusUploading {
		return nil, apperrors.UploadSessionStateError{SessionID: session.ID, Status: session.Status}
	}
	if request.ChunkIndex >= session.TotalChunks {
		return nil, apperrors.ValidationError{Err: errors.Errorf("некорректный номер чанка: %v из %v", request.ChunkIndex, session.TotalChunks)}
	}
	index := request.ChunkIndex
	swapped, err := i.sessionStore.CompareAndSetStatus(session.ID, models.UploadStatusUploading, map[string]interface{}{
		"status":             models.UploadStatusFailed,
		"failed_chunk_index": index,
		"fail_reason":        request.Reason,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка обновления сессии загрузки")
	}
	if !swapped {
		return nil, apperrors.UploadSessionStateError{SessionID: session.ID, Status: session.Status}
	}
	i.getLogger(session.ID, principal.UserID).
		WithField("chunk_index", index).
		WithField("reason", request.Reason).
		Warn("загрузка видео прервана клиентом")
	return i.GetSession(principal, sessionID)
}

func (i impl) GetSession(principal models.Principal, sessionID string) (*videoapimodels.SessionView, error) {
	session, err := i.getSession(principal, sessionID, false)
	if err != nil {
		return nil, err
	}
	received := int64(session.TotalChunks)
	if session.Status != models.UploadStatusCompleted {
		received, err = i.sessionStore.CountChunks(session.ID)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка подсчета чанков")
		}
	}
	result := videoapimodels.SessionConvert(*session, received)
	return &result, nil
}

func (i impl) OpenVideo(ctx context.Context, principal models.Principal, videoID string) (io.ReadCloser, *dbmodels.Video, error) {
	video, err := i.sessionStore.GetVideo(videoID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "ошибка получения видео")
	}
	if video == nil {
		return nil, nil, apperrors.NotFoundError{Kind: models.KindVideo.ToHuman(), ID: videoID}
	}
	if video.OwnerID != principal.UserID && !i.access.Allowed(principal.Role, models.KindVideo, models.ViewPermission) {
		return nil, nil, apperrors.UnauthorizedError{UserID: principal.UserID, Role: principal.Role, Kind: models.KindVideo}
	}
	reader, err := i.storage.GetObject(ctx, video.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return reader, video, nil
}

func (i impl) ExpireStale(ctx context.Context, ttl time.Duration) (int, error) {
	list, err := i.sessionStore.ListStale(i.now().Add(-ttl))
	if err != nil {
		return 0, errors.Wrap(err, "ошибка получения брошенных сессий")
	}
	expired := 0
	for _, session := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		logger := i.getLogger(session.ID, session.OwnerID)
		swapped, err := i.sessionStore.CompareAndSetStatus(session.ID, models.UploadStatusUploading, map[string]interface{}{
			"status": models.UploadStatusExpired,
		})
		if err != nil {
			logger.WithError(err).Error("ошибка обновления сессии загрузки")
			continue
		}
		if !swapped {
			continue
		}
		if err := i.storage.RemoveSession(ctx, session.ID); err != nil {
			logger.WithError(err).Warn("ошибка удаления чанков")
		}
		if err := i.sessionStore.DeleteChunks(session.ID); err != nil {
			logger.WithError(err).Warn("ошибка удаления записей чанков")
		}
		expired++
	}
	return expired, nil
}
