package dbmodels

type DeliveryAgent struct {
	ApprovableModel
	AvailabilityModel
	OnlineModel
	FullName    string
	Phone       string `gorm:"type:varchar(32)"`
	VehicleType string `gorm:"type:varchar(32)"`
	City        string
}

type ServiceProvider struct {
	ApprovableModel
	AvailabilityModel
	BusinessName string
	Category     string `gorm:"type:varchar(64)"`
	Phone        string `gorm:"type:varchar(32)"`
	Address      string
}

type FarmerProduct struct {
	ApprovableModel
	AvailabilityModel
	Name        string
	Description string
	Price       float64
	Unit        string `gorm:"type:varchar(16)"`
	Stock       int
}

type TaxiVehicle struct {
	ApprovableModel
	AvailabilityModel
	OnlineModel
	PlateNumber string `gorm:"type:varchar(16);index"`
	Model       string
	Color       string `gorm:"type:varchar(32)"`
	Category    string `gorm:"type:varchar(32)"`
	Seats       int
}

type RecyclingRate struct {
	ApprovableModel
	AvailabilityModel
	Material   string
	PricePerKg float64
	MinWeight  float64
}

type Nomination struct {
	ApprovableModel
	NomineeName string
	Category    string `gorm:"type:varchar(64)"`
	Reason      string
}

type ServiceRequest struct {
	ApprovableModel
	ServiceType string `gorm:"type:varchar(64)"`
	Address     string
	Description string
	ScheduledAt string `gorm:"type:varchar(32)"`
}

type Video struct {
	ApprovableModel
	AvailabilityModel
	Title           string
	Description     string
	OriginalName    string
	ObjectKey       string
	Size            int64
	UploadSessionID string `gorm:"type:varchar(36);index"`
}
