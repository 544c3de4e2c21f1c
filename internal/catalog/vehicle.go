package catalog

import "time"

type Status string

const (
	StatusAvailable Status = "tersedia"
	StatusRented    Status = "disewa"
	StatusSold      Status = "terjual"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusRented, StatusSold:
		return true
	}
	return false
}

type Transmission string

const (
	Manual    Transmission = "Manual"
	Automatic Transmission = "Automatic"
	CVT       Transmission = "CVT"
)

type Category string

const (
	Car        Category = "mobil"
	Motorcycle Category = "motor"
)

type Spec struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

type Seller struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	Phone    string `json:"phone" yaml:"phone" validate:"required"`
	Location string `json:"location" yaml:"location"`
}

// Vehicle is the application shape served to clients.
type Vehicle struct {
	ID           string       `json:"id" yaml:"-"`
	Name         string       `json:"name" yaml:"name" validate:"required"`
	Image        string       `json:"image" yaml:"image"`
	Price        string       `json:"price" yaml:"price"`
	PriceNumeric int64        `json:"priceNumeric" yaml:"priceNumeric" validate:"gte=0"`
	RentalPrice  *int64       `json:"rentalPrice,omitempty" yaml:"rentalPrice,omitempty" validate:"omitempty,gte=0"`
	Year         int          `json:"year" yaml:"year" validate:"gte=1900,lte=2100"`
	Fuel         string       `json:"fuel" yaml:"fuel"`
	Mileage      string       `json:"mileage" yaml:"mileage"`
	Transmission Transmission `json:"transmission" yaml:"transmission" validate:"oneof=Manual Automatic CVT"`
	Type         Category     `json:"type" yaml:"type" validate:"oneof=mobil motor"`
	Badge        *string      `json:"badge,omitempty" yaml:"badge,omitempty"`
	Status       Status       `json:"status" yaml:"status" validate:"omitempty,oneof=tersedia disewa terjual"`

	Color        *string `json:"color,omitempty" yaml:"color,omitempty"`
	Capacity     *int    `json:"capacity,omitempty" yaml:"capacity,omitempty" validate:"omitempty,gte=0"`
	Engine       *string `json:"engine,omitempty" yaml:"engine,omitempty"`
	Horsepower   *int    `json:"horsepower,omitempty" yaml:"horsepower,omitempty" validate:"omitempty,gte=0"`
	Torque       *int    `json:"torque,omitempty" yaml:"torque,omitempty" validate:"omitempty,gte=0"`
	LicensePlate *string `json:"licensePlate,omitempty" yaml:"licensePlate,omitempty"`
	TaxExpiry    *string `json:"taxExpiry,omitempty" yaml:"taxExpiry,omitempty" validate:"omitempty,datetime=2006-01-02"`

	Gallery     []string  `json:"gallery" yaml:"gallery"`
	Description string    `json:"description" yaml:"description"`
	Specs       []Spec    `json:"specs" yaml:"specs"`
	Seller      Seller    `json:"seller" yaml:"seller"`
	CreatedAt   time.Time `json:"createdAt" yaml:"-"`
}

// Rentable reports whether the vehicle carries a positive daily rate.
func (v Vehicle) Rentable() bool {
	return v.RentalPrice != nil && *v.RentalPrice > 0
}
