package db

import (
	"marketplace-backend/config"
	usersstore "marketplace-backend/lib/users/store"
	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"

	log "github.com/sirupsen/logrus"
)

func InitPreload() {
	addSuperAdmin()
}

func addSuperAdmin() {
	if config.Conf.Admin.Email == "" {
		log.Warn("суперадмин не добавлен, отсутвует настройка ADMIN_EMAIL")
		return
	}
	userStore := usersstore.NewInstance(DB)
	existedRec, err := userStore.FindByEmail(config.Conf.Admin.Email)
	if err != nil {
		log.WithError(err).Error("ошибка добавления суперадмина")
		return
	}
	if existedRec != nil {
		return
	}
	rec := dbmodels.User{
		Role:      models.UserRoleSuperAdmin,
		FirstName: config.Conf.Admin.FirstName,
		LastName:  config.Conf.Admin.LastName,
		Email:     config.Conf.Admin.Email,
	}
	_, err = userStore.Create(rec)
	if err != nil {
		log.WithError(err).Error("ошибка добавления суперадмина")
	}
}
