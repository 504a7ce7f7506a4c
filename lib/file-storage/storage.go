package filestorage

import (
	"context"
	"fmt"
	"io"

	"marketplace-backend/config"
	s3client "marketplace-backend/s3"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// Provider хранилище чанков и собранных видео
type Provider interface {
	// PutChunk сохраняет чанк, повторная запись того же чанка перезаписывает объект
	PutChunk(ctx context.Context, sessionID string, index int, data io.Reader, size int64) (string, error)
	// Assemble склеивает чанки по порядку в итоговый объект, чанки остаются до RemoveSession
	Assemble(ctx context.Context, sessionID string, totalChunks int, contentType string) (objectKey string, size int64, err error)
	GetObject(ctx context.Context, objectKey string) (io.ReadCloser, error)
	// RemoveSession удаляет чанки сессии
	RemoveSession(ctx context.Context, sessionID string) error
	MakeBucket(ctx context.Context) error
}

var Instance Provider

func NewHandler(client *minio.Client) {
	Instance = &impl{
		client:     client,
		bucketName: config.Conf.S3.BucketName,
	}
}

type impl struct {
	client     *minio.Client
	bucketName string
}

func ChunkKey(sessionID string, index int) string {
	return fmt.Sprintf("chunks/%s/%06d", sessionID, index)
}

func VideoKey(sessionID string) string {
	return fmt.Sprintf("videos/%s", sessionID)
}

func (i impl) PutChunk(ctx context.Context, sessionID string, index int, data io.Reader, size int64) (string, error) {
	key := ChunkKey(sessionID, index)
	_, err := i.client.PutObject(ctx, i.bucketName, key, data, size, minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", errors.Wrap(err, "ошибка сохранения чанка в S3")
	}
	return key, nil
}

func (i impl) Assemble(ctx context.Context, sessionID string, totalChunks int, contentType string) (string, int64, error) {
	// minio ComposeObject требует частей от 5 МБ, чанки меньше, поэтому склеиваем потоком
	objects := make([]*minio.Object, 0, totalChunks)
	defer func() {
		for _, obj := range objects {
			obj.Close()
		}
	}()
	readers := make([]io.Reader, 0, totalChunks)
	for index := 0; index < totalChunks; index++ {
		obj, err := i.client.GetObject(ctx, i.bucketName, ChunkKey(sessionID, index), minio.GetObjectOptions{})
		if err != nil {
			return "", 0, errors.Wrapf(err, "ошибка получения чанка %v из S3", index)
		}
		objects = append(objects, obj)
		readers = append(readers, obj)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := VideoKey(sessionID)
	info, err := i.client.PutObject(ctx, i.bucketName, key, io.MultiReader(readers...), -1, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", 0, errors.Wrap(err, "ошибка сохранения видео в S3")
	}
	return key, info.Size, nil
}

func (i impl) GetObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := i.client.GetObject(ctx, i.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения файла из S3")
	}
	return obj, nil
}

func (i impl) RemoveSession(ctx context.Context, sessionID string) error {
	objectsCh := i.client.ListObjects(ctx, i.bucketName, minio.ListObjectsOptions{
		Prefix:    fmt.Sprintf("chunks/%s/", sessionID),
		Recursive: true,
	})
	// канал вычитывается до конца, иначе горутина удаления minio не завершится
	var firstErr error
	for rmErr := range i.client.RemoveObjects(ctx, i.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil && firstErr == nil {
			firstErr = errors.Wrapf(rmErr.Err, "ошибка удаления объекта %v", rmErr.ObjectName)
		}
	}
	return firstErr
}

func (i impl) MakeBucket(ctx context.Context) error {
	return s3client.MakeBucket(ctx, i.client, i.bucketName)
}
