package catalog

import "time"

// Row is the storage shape of a vehicle: flat, snake_case, nullable.
type Row struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Image          string     `json:"image"`
	Price          string     `json:"price"`
	PriceNumeric   int64      `json:"price_numeric"`
	RentalPrice    *int64     `json:"rental_price"`
	Year           int        `json:"year"`
	Fuel           string     `json:"fuel"`
	Mileage        string     `json:"mileage"`
	Transmission   string     `json:"transmission"`
	Type           string     `json:"type"`
	Badge          *string    `json:"badge"`
	Gallery        []string   `json:"gallery"`
	Description    string     `json:"description"`
	Specs          []Spec     `json:"specs"`
	SellerName     string     `json:"seller_name"`
	SellerPhone    string     `json:"seller_phone"`
	SellerLocation string     `json:"seller_location"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	Color          *string    `json:"color"`
	Capacity       *int       `json:"capacity"`
	Engine         *string    `json:"engine"`
	Horsepower     *int       `json:"horsepower"`
	Torque         *int       `json:"torque"`
	LicensePlate   *string    `json:"license_plate"`
	TaxExpiry      *string    `json:"tax_expiry"`
}

// FromRow maps a stored row to the application shape.
// A missing status reads as available; nil collections read as empty.
func FromRow(r Row) Vehicle {
	status := Status(r.Status)
	if status == "" {
		status = StatusAvailable
	}
	gallery := r.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	specs := r.Specs
	if specs == nil {
		specs = []Spec{}
	}
	return Vehicle{
		ID:           r.ID,
		Name:         r.Name,
		Image:        r.Image,
		Price:        r.Price,
		PriceNumeric: r.PriceNumeric,
		RentalPrice:  r.RentalPrice,
		Year:         r.Year,
		Fuel:         r.Fuel,
		Mileage:      r.Mileage,
		Transmission: Transmission(r.Transmission),
		Type:         Category(r.Type),
		Badge:        r.Badge,
		Status:       status,
		Color:        r.Color,
		Capacity:     r.Capacity,
		Engine:       r.Engine,
		Horsepower:   r.Horsepower,
		Torque:       r.Torque,
		LicensePlate: r.LicensePlate,
		TaxExpiry:    r.TaxExpiry,
		Gallery:      gallery,
		Description:  r.Description,
		Specs:        specs,
		Seller: Seller{
			Name:     r.SellerName,
			Phone:    r.SellerPhone,
			Location: r.SellerLocation,
		},
		CreatedAt: r.CreatedAt,
	}
}

// ToRow maps an application vehicle to its storage shape for insert.
// ID and CreatedAt are left to the store.
func ToRow(v Vehicle) Row {
	status := v.Status
	if status == "" {
		status = StatusAvailable
	}
	gallery := v.Gallery
	if gallery == nil {
		gallery = []string{}
	}
	specs := v.Specs
	if specs == nil {
		specs = []Spec{}
	}
	return Row{
		Name:           v.Name,
		Image:          v.Image,
		Price:          v.Price,
		PriceNumeric:   v.PriceNumeric,
		RentalPrice:    v.RentalPrice,
		Year:           v.Year,
		Fuel:           v.Fuel,
		Mileage:        v.Mileage,
		Transmission:   string(v.Transmission),
		Type:           string(v.Type),
		Badge:          v.Badge,
		Gallery:        gallery,
		Description:    v.Description,
		Specs:          specs,
		SellerName:     v.Seller.Name,
		SellerPhone:    v.Seller.Phone,
		SellerLocation: v.Seller.Location,
		Status:         string(status),
		Color:          v.Color,
		Capacity:       v.Capacity,
		Engine:         v.Engine,
		Horsepower:     v.Horsepower,
		Torque:         v.Torque,
		LicensePlate:   v.LicensePlate,
		TaxExpiry:      v.TaxExpiry,
	}
}

// Patch is a partial vehicle update. Nil fields are left untouched.
// For optional attributes an empty string or zero clears the column.
type Patch struct {
	Name         *string       `json:"name,omitempty"`
	Image        *string       `json:"image,omitempty"`
	Price        *string       `json:"price,omitempty"`
	PriceNumeric *int64        `json:"priceNumeric,omitempty" validate:"omitempty,gte=0"`
	RentalPrice  *int64        `json:"rentalPrice,omitempty" validate:"omitempty,gte=0"`
	Year         *int          `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Fuel         *string       `json:"fuel,omitempty"`
	Mileage      *string       `json:"mileage,omitempty"`
	Transmission *Transmission `json:"transmission,omitempty" validate:"omitempty,oneof=Manual Automatic CVT"`
	Type         *Category     `json:"type,omitempty" validate:"omitempty,oneof=mobil motor"`
	Badge        *string       `json:"badge,omitempty"`
	Status       *Status       `json:"status,omitempty" validate:"omitempty,oneof=tersedia disewa terjual"`
	Gallery      []string      `json:"gallery,omitempty"`
	Description  *string       `json:"description,omitempty"`
	Specs        []Spec        `json:"specs,omitempty"`
	Seller       *Seller       `json:"seller,omitempty"`
	Color        *string       `json:"color,omitempty"`
	Capacity     *int          `json:"capacity,omitempty"`
	Engine       *string       `json:"engine,omitempty"`
	Horsepower   *int          `json:"horsepower,omitempty"`
	Torque       *int          `json:"torque,omitempty"`
	LicensePlate *string       `json:"licensePlate,omitempty"`
	TaxExpiry    *string       `json:"taxExpiry,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Apply writes the set fields of p onto r.
func (p Patch) Apply(r *Row) {
	setStr(&r.Name, p.Name)
	setStr(&r.Image, p.Image)
	setStr(&r.Price, p.Price)
	if p.PriceNumeric != nil {
		r.PriceNumeric = *p.PriceNumeric
	}
	if p.RentalPrice != nil {
		r.RentalPrice = nullInt64(*p.RentalPrice)
	}
	if p.Year != nil {
		r.Year = *p.Year
	}
	setStr(&r.Fuel, p.Fuel)
	setStr(&r.Mileage, p.Mileage)
	if p.Transmission != nil {
		r.Transmission = string(*p.Transmission)
	}
	if p.Type != nil {
		r.Type = string(*p.Type)
	}
	if p.Badge != nil {
		r.Badge = nullString(*p.Badge)
	}
	if p.Status != nil {
		r.Status = string(*p.Status)
	}
	if p.Gallery != nil {
		r.Gallery = append([]string{}, p.Gallery...)
	}
	setStr(&r.Description, p.Description)
	if p.Specs != nil {
		r.Specs = append([]Spec{}, p.Specs...)
	}
	if p.Seller != nil {
		r.SellerName = p.Seller.Name
		r.SellerPhone = p.Seller.Phone
		r.SellerLocation = p.Seller.Location
	}
	if p.Color != nil {
		r.Color = nullString(*p.Color)
	}
	if p.Capacity != nil {
		r.Capacity = nullInt(*p.Capacity)
	}
	if p.Engine != nil {
		r.Engine = nullString(*p.Engine)
	}
	if p.Horsepower != nil {
		r.Horsepower = nullInt(*p.Horsepower)
	}
	if p.Torque != nil {
		r.Torque = nullInt(*p.Torque)
	}
	if p.LicensePlate != nil {
		r.LicensePlate = nullString(*p.LicensePlate)
	}
	if p.TaxExpiry != nil {
		r.TaxExpiry = nullString(*p.TaxExpiry)
	}
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}

func nullInt64(i int64) *int64 {
	if i == 0 {
		return nil
	}
	return &i
}
