package usersstore

import (
	"strings"

	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.User) (id string, err error)
	GetByID(id string) (*dbmodels.User, error)
	FindByEmail(email string) (*dbmodels.User, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.User) (id string, err error) {
	rec.Email = strings.ToLower(strings.TrimSpace(rec.Email))
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(id string) (*dbmodels.User, error) {
	return i.findOne("id = ?", id)
}

func (i impl) FindByEmail(email string) (*dbmodels.User, error) {
	return i.findOne("email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (i impl) findOne(query string, value interface{}) (*dbmodels.User, error) {
	rec := dbmodels.User{}
	err := i.db.
		Where(query, value).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
