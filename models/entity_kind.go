package models

// EntityKind вид согласуемой сущности
type EntityKind string

const (
	KindDeliveryAgent   EntityKind = "delivery_agent"
	KindServiceProvider EntityKind = "service_provider"
	KindFarmerProduct   EntityKind = "farmer_product"
	KindTaxiVehicle     EntityKind = "taxi_vehicle"
	KindRecyclingRate   EntityKind = "recycling_rate"
	KindNomination      EntityKind = "nomination"
	KindServiceRequest  EntityKind = "service_request"
	KindVideo           EntityKind = "video"
)

var AllKinds = []EntityKind{
	KindDeliveryAgent,
	KindServiceProvider,
	KindFarmerProduct,
	KindTaxiVehicle,
	KindRecyclingRate,
	KindNomination,
	KindServiceRequest,
	KindVideo,
}

var kindTables = map[EntityKind]string{
	KindDeliveryAgent:   "delivery_agents",
	KindServiceProvider: "service_providers",
	KindFarmerProduct:   "farmer_products",
	KindTaxiVehicle:     "taxi_vehicles",
	KindRecyclingRate:   "recycling_rates",
	KindNomination:      "nominations",
	KindServiceRequest:  "service_requests",
	KindVideo:           "videos",
}

var kindHumanName = map[EntityKind]string{
	KindDeliveryAgent:   "Курьер",
	KindServiceProvider: "Поставщик услуг",
	KindFarmerProduct:   "Товар фермера",
	KindTaxiVehicle:     "Автомобиль такси",
	KindRecyclingRate:   "Тариф переработки",
	KindNomination:      "Номинация",
	KindServiceRequest:  "Заявка на услугу",
	KindVideo:           "Видео",
}

func (k EntityKind) IsValid() bool {
	_, ok := kindTables[k]
	return ok
}

// Table имя таблицы в БД
func (k EntityKind) Table() string {
	return kindTables[k]
}

func (k EntityKind) ToHuman() string {
	if human, exist := kindHumanName[k]; exist {
		return human
	}
	return string(k)
}

// AvailabilityFlag независимый от статуса признак доступности
type AvailabilityFlag string

const (
	FlagActive AvailabilityFlag = "is_active"
	FlagOnline AvailabilityFlag = "is_online"
)

var kindFlags = map[EntityKind][]AvailabilityFlag{
	KindDeliveryAgent:   {FlagActive, FlagOnline},
	KindServiceProvider: {FlagActive},
	KindFarmerProduct:   {FlagActive},
	KindTaxiVehicle:     {FlagActive, FlagOnline},
	KindRecyclingRate:   {FlagActive},
	KindVideo:           {FlagActive},
}

func (k EntityKind) SupportsFlag(flag AvailabilityFlag) bool {
	for _, f := range kindFlags[k] {
		if f == flag {
			return true
		}
	}
	return false
}

func (k EntityKind) Flags() []AvailabilityFlag {
	return kindFlags[k]
}
