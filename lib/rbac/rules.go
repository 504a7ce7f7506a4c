package rbac

import (
	"marketplace-backend/models"
)

var (
	StaffRoleSet     = []models.UserRole{models.UserRoleSuperAdmin, models.UserRoleAdmin, models.UserRoleModerator}
	AdminRoleSet     = []models.UserRole{models.UserRoleSuperAdmin, models.UserRoleAdmin}
	TransportKinds   = []models.EntityKind{models.KindDeliveryAgent, models.KindTaxiVehicle}
	CatalogKinds     = []models.EntityKind{models.KindServiceProvider, models.KindFarmerProduct, models.KindRecyclingRate}
	ContentKinds     = []models.EntityKind{models.KindNomination, models.KindVideo}
	ServiceDeskKinds = []models.EntityKind{models.KindServiceRequest}
)

func (i *impl) initRules() {
	i.staff()
	i.owners()
}

func (i *impl) staff() {
	// VIEW
	i.RegisterRule(models.AllKinds, models.ViewPermission, StaffRoleSet)
	i.RegisterRule(models.AllKinds, models.ExportPermission, AdminRoleSet)
	// REVIEW
	i.RegisterRule(models.AllKinds, models.ReviewPermission, AdminRoleSet)
	// модераторы согласуют только контент и каталог
	i.RegisterRule(ContentKinds, models.ReviewPermission, []models.UserRole{models.UserRoleModerator})
	i.RegisterRule(CatalogKinds, models.ReviewPermission, []models.UserRole{models.UserRoleModerator})
}

func (i *impl) owners() {
	i.RegisterRule([]models.EntityKind{models.KindDeliveryAgent}, models.SubmitPermission, []models.UserRole{models.UserRoleDeliveryAgent})
	i.RegisterRule([]models.EntityKind{models.KindTaxiVehicle}, models.SubmitPermission, []models.UserRole{models.UserRoleDriver})
	i.RegisterRule([]models.EntityKind{models.KindServiceProvider, models.KindRecyclingRate, models.KindVideo}, models.SubmitPermission, []models.UserRole{models.UserRoleProvider})
	i.RegisterRule([]models.EntityKind{models.KindFarmerProduct, models.KindVideo}, models.SubmitPermission, []models.UserRole{models.UserRoleFarmer})
	i.RegisterRule([]models.EntityKind{models.KindNomination, models.KindServiceRequest}, models.SubmitPermission, []models.UserRole{models.UserRoleCustomer})
}
