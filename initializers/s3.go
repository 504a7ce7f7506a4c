package initializers

import (
	"context"

	"marketplace-backend/config"
	filestorage "marketplace-backend/lib/file-storage"
	s3client "marketplace-backend/s3"

	log "github.com/sirupsen/logrus"
)

func InitS3(ctx context.Context) {
	minioClient, err := s3client.NewClient()
	if err != nil {
		panic("Ошибка инициализации клиента S3: " + err.Error())
	}

	// Проверка соединения и наличия бакета
	err = s3client.MakeBucket(ctx, minioClient, config.Conf.S3.BucketName)
	if err != nil {
		log.WithError(err).Error("S3 соединение не удалось, бакет не создан")
	}

	s3client.Client = minioClient
	filestorage.NewHandler(minioClient)
	log.Info("S3 клиент успешно инициализирован")
}
