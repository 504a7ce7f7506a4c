package models

type UserRole string

const (
	UserRoleSuperAdmin    UserRole = "SUPER_ADMIN"
	UserRoleAdmin         UserRole = "ADMIN"
	UserRoleModerator     UserRole = "MODERATOR"
	UserRoleProvider      UserRole = "PROVIDER"
	UserRoleFarmer        UserRole = "FARMER"
	UserRoleDriver        UserRole = "DRIVER"
	UserRoleDeliveryAgent UserRole = "DELIVERY_AGENT"
	UserRoleCustomer      UserRole = "CUSTOMER"
)

var roleHumanName = map[UserRole]string{
	UserRoleSuperAdmin:    "Суперадмин системы",
	UserRoleAdmin:         "Администратор",
	UserRoleModerator:     "Модератор",
	UserRoleProvider:      "Поставщик услуг",
	UserRoleFarmer:        "Фермер",
	UserRoleDriver:        "Водитель",
	UserRoleDeliveryAgent: "Курьер",
	UserRoleCustomer:      "Покупатель",
}

func (r UserRole) ToHuman() string {
	if human, exist := roleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r UserRole) IsStaff() bool {
	return r == UserRoleSuperAdmin || r == UserRoleAdmin || r == UserRoleModerator
}

const SystemUser = "Система"

func (r UserRole) IsValid() bool {
	_, ok := roleHumanName[r]
	return ok
}
