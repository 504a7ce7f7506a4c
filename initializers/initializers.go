package initializers

import (
	"context"
	"time"

	"marketplace-backend/config"
	"marketplace-backend/fiberlog"
	approvalhandler "marketplace-backend/lib/approval"
	listcache "marketplace-backend/lib/approval/list-cache"
	availabilityhandler "marketplace-backend/lib/availability"
	xlsexport "marketplace-backend/lib/export/xls"
	filestorage "marketplace-backend/lib/file-storage"
	notifyhandler "marketplace-backend/lib/notify"
	"marketplace-backend/lib/rbac"
	"marketplace-backend/lib/smtp"
	submissionhandler "marketplace-backend/lib/submission"
	initchecker "marketplace-backend/lib/utils/init-checker"
	videohandler "marketplace-backend/lib/video"
	staleuploadworker "marketplace-backend/lib/video/stale-worker"
	connectionhub "marketplace-backend/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	connectionhub.Init()
	rbac.NewHandler()
	listcache.NewHandler(time.Duration(config.Conf.ListCache.TTLSec) * time.Second)
	// порядок важен: обработчики забирают Instance зависимостей при создании
	initchecker.CheckInit(
		"filestorage", filestorage.Instance,
		"smtp", smtp.Instance,
		"connectionhub", connectionhub.Instance,
		"rbac", rbac.Instance,
		"listcache", listcache.Instance,
	)
	notifyhandler.NewHandler()
	approvalhandler.NewHandler()
	availabilityhandler.NewHandler()
	submissionhandler.NewHandler()
	videohandler.NewHandler()
	xlsexport.NewHandler()
	initchecker.CheckInit(
		"notify", notifyhandler.Instance,
		"approval", approvalhandler.Instance,
		"availability", availabilityhandler.Instance,
		"submission", submissionhandler.Instance,
		"video", videohandler.Instance,
		"xlsexport", xlsexport.Instance,
	)
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// Задача закрытия брошенных сессий загрузки видео
	if makeTimeGap(ctx) {
		staleuploadworker.StartWorker(ctx)
	}
}

func makeTimeGap(ctx context.Context) (canRun bool) {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(time.Second * 10):
		return true
	}
}
