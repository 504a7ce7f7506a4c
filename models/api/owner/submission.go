package ownerapimodels

import (
	"strings"

	"marketplace-backend/models"
	dbmodels "marketplace-backend/models/db"

	"github.com/pkg/errors"
)

func newApprovable(ownerID string, initial models.ApprovalStatus) dbmodels.ApprovableModel {
	return dbmodels.ApprovableModel{
		OwnerID: ownerID,
		Status:  initial,
	}
}

type DeliveryAgentData struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	VehicleType string `json:"vehicle_type"` // bike/scooter/car
	City        string `json:"city"`
}

func (d DeliveryAgentData) Validate() error {
	if strings.TrimSpace(d.FullName) == "" {
		return errors.New("не указано ФИО")
	}
	if strings.TrimSpace(d.Phone) == "" {
		return errors.New("не указан телефон")
	}
	return nil
}

func (d DeliveryAgentData) ToDB(ownerID string, initial models.ApprovalStatus) *dbmodels.DeliveryAgent {
	return &dbmodels.DeliveryAgent{
		ApprovableModel: newApprovable(ownerID, initial),
		FullName:        d.FullName,
		Phone:           d.Phone,
		VehicleType:     d.VehicleType,
		City:            d.City,
	}
}

type ServiceProviderData struct {
	BusinessName string `json:"business_name"`
	Category     string `json:"category"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

func (d ServiceProviderData) Validate() error {
	if strings.TrimSpace(d.BusinessName) == "" {
		return errors.New("не указано название")
	}
	if d.Category == "" {
		return errors.New("не указана категория")
	}
	return nil
}

func (d ServiceProviderData) ToDB(ownerID string, initial models.ApprovalStatus) *dbmodels.ServiceProvider {
	return &dbmodels.ServiceProvider{
		ApprovableModel: newApprovable(ownerID, initial),
		BusinessName:    d.BusinessName,
		Category:        d.Category,
		Phone:           d.Phone,
		Address:         d.Address,
	}
}

type FarmerProductData struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Stock       int     `json:"stock"`
}

func (d FarmerProductData) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("не указано наименование товара")
	}
	if d.Price <= 0 {
		return errors.New("цена должна быть больше нуля")
	}
	if d.Stock < 0 {
		return errors.New("остаток не может быть отрицательным")
	}
	return nil
}

func (d FarmerProductData) ToDB(ownerID string, initial models.ApprovalStatus) *dbmodels.FarmerProduct {
	return &dbmodels.FarmerProduct{
		ApprovableModel: newApprovable(ownerID, initial),
		Name:            d.Name,
		Description:     d.Description,
		Price:           d.Price,
		Unit:            d.Unit,
		Stock:           d.Stock,
	}
}

type TaxiVehicleData struct {
	PlateNumber string `json:"plate_number"`
	Model       string `json:"model"`
	Color       string `json:"color"`
	Category    string `json:"category"` // economy/comfort/business
	Seats       int    `json:"seats"`
}

func (d TaxiVehicleData) Validate() error {
	if strings.TrimSpace(d.PlateNumber) == "" {
		return errors.New("не указан гос. номер")
	}
	if d.Seats <= 0 {
		return errors.New("количество мест должно быть больше нуля")
	}
	return nil
}

func (d TaxiVehicleData) ToDB(ownerID string, initial models.ApprovalStatus) *dbmodels.TaxiVehicle {
	return &dbmodels.TaxiVehicle{
		ApprovableModel: newApprovable(ownerID, initial),
		PlateNumber:     strings.ToUpper(strings.TrimSpace(d.PlateNumber)),
		Model:           d.Model,
		Color:           d.Color,
		Category:        d.Category,
		Seats:           d.Seats,
	}
}

type RecyclingRateData struct {
	Material   string  `json:"material"`
	PricePerKg float64 `json:"price_per_kg"`
	MinWeight  float64 `json:"min_weight"`
}

func (d RecyclingRateData) Validate() error {
	if strings.TrimSpace(d.Material) == "" {
		return errors.New("не указан материал")
	}
	if d.PricePerKg <= 0 {
		return errors.New("цена за кг должна быть больше нуля")
	}
	return nil
}

func (d RecyclingRateData) ToDB(ownerID string, initial models.ApprovalStatus) *dbmodels.RecyclingRate {
	return &dbmodels.RecyclingRate{
		ApprovableModel: newApprovable(ownerID, initial),
		Material:        d.Material,
		PricePerKg:      d.PricePerKg,
		MinWeight:       d.MinWeight,
	}
}

type NominationData struct {
	NomineeName string `json:"nominee_name"`
	Category    string `json:"category"`
	Reason      string `json:"reason"`
}

func (d NominationData) Validate() error {
	if strings.TrimSpace(d.NomineeName) == "" {
		return errors.New("не указан номинант")
	}
	if strings.TrimSpace(d.Reason) == "" {
		return errors.New("не указано обоснование")
	}
	return nil
}

func (d NominationData) ToDB(ownerID string, initial models.ApprovalStatus) *dbmodels.Nomination {
	return &dbmodels.Nomination{
		ApprovableModel: newApprovable(ownerID, initial),
		NomineeName:     d.NomineeName,
		Category:        d.Category,
		Reason:          d.Reason,
	}
}

type ServiceRequestData struct {
	ServiceType string `json:"service_type"`
	Address     string `json:"address"`
	Description string `json:"description"`
	ScheduledAt string `json:"scheduled_at"`
}

func (d ServiceRequestData) Validate() error {
	if d.ServiceType == "" {
		return errors.New("не указан вид услуги")
	}
	if strings.TrimSpace(d.Address) == "" {
		return errors.New("не указан адрес")
	}
	return nil
}

func (d ServiceRequestData) ToDB(ownerID string, initial models.ApprovalStatus) *dbmodels.ServiceRequest {
	return &dbmodels.ServiceRequest{
		ApprovableModel: newApprovable(ownerID, initial),
		ServiceType:     d.ServiceType,
		Address:         d.Address,
		Description:     d.Description,
		ScheduledAt:     d.ScheduledAt,
	}
}

// Submission заявка владельца на размещение сущности
type Submission interface {
	Validate() error
	Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified
}

func (d DeliveryAgentData) Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified {
	return d.ToDB(ownerID, initial)
}

func (d ServiceProviderData) Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified {
	return d.ToDB(ownerID, initial)
}

func (d FarmerProductData) Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified {
	return d.ToDB(ownerID, initial)
}

func (d TaxiVehicleData) Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified {
	return d.ToDB(ownerID, initial)
}

func (d RecyclingRateData) Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified {
	return d.ToDB(ownerID, initial)
}

func (d NominationData) Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified {
	return d.ToDB(ownerID, initial)
}

func (d ServiceRequestData) Record(ownerID string, initial models.ApprovalStatus) dbmodels.Identified {
	return d.ToDB(ownerID, initial)
}

// NewSubmission пустая заявка для разбора тела запроса. Видео подаются через загрузку чанками
func NewSubmission(kind models.EntityKind) (Submission, bool) {
	switch kind {
	case models.KindDeliveryAgent:
		return &DeliveryAgentData{}, true
	case models.KindServiceProvider:
		return &ServiceProviderData{}, true
	case models.KindFarmerProduct:
		return &FarmerProductData{}, true
	case models.KindTaxiVehicle:
		return &TaxiVehicleData{}, true
	case models.KindRecyclingRate:
		return &RecyclingRateData{}, true
	case models.KindNomination:
		return &NominationData{}, true
	case models.KindServiceRequest:
		return &ServiceRequestData{}, true
	}
	return nil, false
}
