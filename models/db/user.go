package dbmodels

import (
	"fmt"
	"marketplace-backend/models"
	"strings"
)

type User struct {
	BaseModel
	Email     string `gorm:"type:varchar(255);uniqueIndex"`
	FirstName string
	LastName  string
	Role      models.UserRole `gorm:"type:varchar(32)"`
}

func (u User) GetFullName() string {
	return strings.TrimSpace(fmt.Sprintf("%v %v", u.FirstName, u.LastName))
}
