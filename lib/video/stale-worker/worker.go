package staleuploadworker

import (
	"context"
	"time"

	"marketplace-backend/config"
	baseworker "marketplace-backend/lib/utils/base-worker"
	videohandler "marketplace-backend/lib/video"
)

// StartWorker помечает брошенные сессии загрузки как expired и чистит их чанки
func StartWorker(ctx context.Context) {
	i := &impl{
		BaseImpl: *baseworker.NewInstance("StaleUploadWorker", 30*time.Second, 15*time.Minute),
		ttl:      time.Duration(config.Conf.Upload.StaleSessionTTLMin) * time.Minute,
		videos:   videohandler.Instance,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	ttl    time.Duration
	videos videohandler.Provider
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	expired, err := i.videos.ExpireStale(ctx, i.ttl)
	if err != nil {
		logger.WithError(err).Error("Ошибка обработки брошенных сессий загрузки")
		return
	}
	if expired > 0 {
		logger.WithField("expired", expired).Info("Брошенные сессии загрузки закрыты")
	}
}
