package rbac

import (
	"marketplace-backend/models"
	"slices"
)

type Provider interface {
	// Allowed есть ли у роли право на операцию с видом сущности
	Allowed(role models.UserRole, kind models.EntityKind, permission models.Permission) bool
	// CanReview право согласования (смены статуса) для вида сущности
	CanReview(role models.UserRole, kind models.EntityKind) bool
	RegisterRule(kinds []models.EntityKind, permission models.Permission, roles []models.UserRole)
	GetPermissions(role models.UserRole) map[models.EntityKind][]models.Permission
}

var Instance Provider

func NewHandler() {
	Instance = newImpl()
}

func newImpl() *impl {
	i := &impl{
		permissions: map[models.UserRole]map[models.EntityKind][]models.Permission{},
	}
	i.initRules()
	return i
}

type impl struct {
	permissions map[models.UserRole]map[models.EntityKind][]models.Permission
}

func (i *impl) Allowed(role models.UserRole, kind models.EntityKind, permission models.Permission) bool {
	kinds, ok := i.permissions[role]
	if !ok {
		return false
	}
	return slices.Contains(kinds[kind], permission)
}

func (i *impl) CanReview(role models.UserRole, kind models.EntityKind) bool {
	return i.Allowed(role, kind, models.ReviewPermission)
}

func (i *impl) RegisterRule(kinds []models.EntityKind, permission models.Permission, roles []models.UserRole) {
	for _, role := range roles {
		_, ok := i.permissions[role]
		if !ok {
			i.permissions[role] = map[models.EntityKind][]models.Permission{}
		}
		for _, kind := range kinds {
			permissions := i.permissions[role][kind]
			if slices.Contains(permissions, permission) {
				continue
			}
			i.permissions[role][kind] = append(permissions, permission)
		}
	}
}

func (i *impl) GetPermissions(role models.UserRole) map[models.EntityKind][]models.Permission {
	return i.permissions[role]
}
