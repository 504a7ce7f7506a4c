package uploader

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	MicroChunkSize      int64 = 256 * 1024
	UltraSmallChunkSize int64 = 512 * 1024

	MaxAttempts    = 5
	AttemptTimeout = 30 * time.Second
)

// ChunkRange непрерывный участок файла
type ChunkRange struct {
	Index  int
	Offset int64
	Size   int64
}

// Split делит файл на ceil(size/chunkSize) участков, последний может быть короче
func Split(size, chunkSize int64) []ChunkRange {
	if size <= 0 || chunkSize <= 0 {
		return []ChunkRange{}
	}
	count := (size + chunkSize - 1) / chunkSize
	result := make([]ChunkRange, 0, count)
	for index := int64(0); index < count; index++ {
		offset := index * chunkSize
		result = append(result, ChunkRange{
			Index:  int(index),
			Offset: offset,
			Size:   min(chunkSize, size-offset),
		})
	}
	return result
}

// Metadata описание видео, передается с нулевым чанком
type Metadata struct {
	Title        string
	Description  string
	OriginalName string
	TotalSize    int64
}

type Chunk struct {
	SessionID string
	Index     int
	Total     int
	Data      []byte
	Meta      *Metadata
}

type ChunkSender interface {
	SendChunk(ctx context.Context, chunk Chunk) error
}

type FailureReporter interface {
	ReportFailure(ctx context.Context, sessionID string, chunkIndex int, reason string) error
}

type Option func(u *Uploader)

func WithChunkSize(size int64) Option {
	return func(u *Uploader) {
		u.chunkSize = size
	}
}

// WithProgress вызывается после подтверждения каждого чанка, значение в процентах
func WithProgress(fn func(percent float64)) Option {
	return func(u *Uploader) {
		u.progress = fn
	}
}

func WithAttemptTimeout(timeout time.Duration) Option {
	return func(u *Uploader) {
		u.attemptTimeout = timeout
	}
}

func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(u *Uploader) {
		u.sleep = fn
	}
}

type Uploader struct {
	sender         ChunkSender
	reporter       FailureReporter
	chunkSize      int64
	maxAttempts    int
	attemptTimeout time.Duration
	progress       func(percent float64)
	sleep          func(ctx context.Context, d time.Duration) error
}

func New(sender ChunkSender, reporter FailureReporter, opts ...Option) *Uploader {
	u := &Uploader{
		sender:         sender,
		reporter:       reporter,
		chunkSize:      MicroChunkSize,
		maxAttempts:    MaxAttempts,
		attemptTimeout: AttemptTimeout,
		progress:       func(float64) {},
		sleep:          sleepCtx,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff пауза после неудачной попытки attempt (с нуля): 1, 2, 4, 8 секунд
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// Upload отправляет файл чанками строго последовательно.
// При исчерпании попыток следующие чанки не отправляются, сервер получает номер сбойного чанка
func (u *Uploader) Upload(ctx context.Context, sessionID string, src io.ReaderAt, meta Metadata) error {
	logger := log.
		WithField("session_id", sessionID).
		WithField("file_name", meta.OriginalName)
	ranges := Split(meta.TotalSize, u.chunkSize)
	if len(ranges) == 0 {
		return errors.New("пустой файл")
	}
	total := len(ranges)
	for _, rng := range ranges {
		data := make([]byte, rng.Size)
		_, err := src.ReadAt(data, rng.Offset)
		if err != nil && !(errors.Is(err, io.EOF) && rng.Offset+rng.Size == meta.TotalSize) {
			return errors.Wrapf(err, "ошибка чтения чанка %v", rng.Index)
		}
		chunk := Chunk{
			SessionID: sessionID,
			Index:     rng.Index,
			Total:     total,
			Data:      data,
		}
		if rng.Index == 0 {
			chunk.Meta = &meta
		}
		err = u.sendWithRetry(ctx, chunk)
		if err != nil {
			logger.WithField("chunk_index", rng.Index).WithError(err).Error("загрузка прервана")
			var exhausted ChunkUploadExhaustedError
			var rejected ChunkRejectedError
			if errors.As(err, &exhausted) || errors.As(err, &rejected) {
				u.reportFailure(ctx, sessionID, rng.Index, err)
			}
			return err
		}
		u.progress(float64(rng.Index+1) / float64(total) * 100)
	}
	logger.WithField("chunks", total).Info("файл загружен")
	return nil
}

func (u *Uploader) sendWithRetry(ctx context.Context, chunk Chunk) error {
	logger := log.
		WithField("session_id", chunk.SessionID).
		WithField("chunk_index", chunk.Index)
	var lastErr error
	for attempt := 0; attempt < u.maxAttempts; attempt++ {
		err := u.sendOnce(ctx, chunk, attempt)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsRetryable(err) {
			return ChunkRejectedError{Index: chunk.Index, Err: err}
		}
		lastErr = err
		logger.WithField("attempt", attempt+1).WithError(err).Warn("ошибка отправки чанка")
		if attempt+1 < u.maxAttempts {
			if err := u.sleep(ctx, Backoff(attempt)); err != nil {
				return err
			}
		}
	}
	return ChunkUploadExhaustedError{Index: chunk.Index, Attempts: u.maxAttempts, Err: lastErr}
}

func (u *Uploader) sendOnce(ctx context.Context, chunk Chunk, attempt int) error {
	attemptCtx, cancel := context.WithTimeout(ctx, u.attemptTimeout)
	defer cancel()
	err := u.sender.SendChunk(attemptCtx, chunk)
	if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return ChunkUploadTimeoutError{Index: chunk.Index, Attempt: attempt}
	}
	return err
}

func (u *Uploader) reportFailure(ctx context.Context, sessionID string, index int, cause error) {
	if u.reporter == nil {
		return
	}
	// контекст загрузки мог истечь, отчет отправляем отдельно
	reportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.attemptTimeout)
	defer cancel()
	err := u.reporter.ReportFailure(reportCtx, sessionID, index, cause.Error())
	if err != nil {
		log.
			WithField("session_id", sessionID).
			WithField("chunk_index", index).
			WithError(err).
			Warn("не удалось сообщить серверу о сбое загрузки")
	}
}
