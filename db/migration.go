package db

import (
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	tables := []struct {
		name  string
		model interface{}
	}{
		{"User", &dbmodels.User{}},
		{"DeliveryAgent", &dbmodels.DeliveryAgent{}},
		{"ServiceProvider", &dbmodels.ServiceProvider{}},
		{"FarmerProduct", &dbmodels.FarmerProduct{}},
		{"TaxiVehicle", &dbmodels.TaxiVehicle{}},
		{"RecyclingRate", &dbmodels.RecyclingRate{}},
		{"Nomination", &dbmodels.Nomination{}},
		{"ServiceRequest", &dbmodels.ServiceRequest{}},
		{"Video", &dbmodels.Video{}},
		{"TransitionAudit", &dbmodels.TransitionAudit{}},
		{"UploadSession", &dbmodels.UploadSession{}},
		{"UploadChunk", &dbmodels.UploadChunk{}},
	}
	for _, table := range tables {
		if err := DB.AutoMigrate(table.model); err != nil {
			return errors.Wrapf(err, "ошибка создания структуры %v", table.name)
		}
	}
	log.Info("Миграция прошла успешно")
	return nil
}
