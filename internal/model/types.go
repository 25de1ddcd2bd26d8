package model

// DriverStatus is the lifecycle state of a driver account.
type DriverStatus string

const (
	DriverActive   DriverStatus = "active"
	DriverInactive DriverStatus = "inactive"
)

// VehicleStatus is the lifecycle state of a fleet vehicle.
type VehicleStatus string

const (
	VehicleActive   VehicleStatus = "active"
	VehicleInactive VehicleStatus = "inactive"
)

// Driver is the account directory record used by the auth flows. The
// password hash is a hex SHA-256 digest and never leaves the server.
type Driver struct {
	ID             int
	Name           string
	PhoneNumber    string
	LicensePlate   string
	Status         DriverStatus
	PasswordHash   string
	RequiresOTP    bool
	VehicleID      int
	VehicleAllowed bool
}

// Vehicle is a fleet vehicle as returned to clients.
type Vehicle struct {
	ID           int           `json:"id"`
	LicensePlate string        `json:"license_plate"`
	Type         string        `json:"type"`
	Status       VehicleStatus `json:"status"`
}

// Position is the driver's role within the fleet.
type Position struct {
	Title string `json:"title"`
	Depot string `json:"depot"`
	Since string `json:"since"`
}

// License is the driver's driving license record.
type License struct {
	Number    string `json:"number"`
	Class     string `json:"class"`
	ExpiresAt string `json:"expires_at"`
}

// Salary is the driver's compensation summary.
type Salary struct {
	BaseAmount int64  `json:"base_amount"`
	Currency   string `json:"currency"`
	Period     string `json:"period"`
}

// Insurance is the driver's insurance policy record.
type Insurance struct {
	Provider     string `json:"provider"`
	PolicyNumber string `json:"policy_number"`
	ValidUntil   string `json:"valid_until"`
}

// TodaySummary aggregates the driver's activity for the current day.
type TodaySummary struct {
	Trips      int     `json:"trips"`
	DistanceKM float64 `json:"distance_km"`
	CodAmount  int64   `json:"cod_amount"`
}

// Shipment is one delivery assigned to the driver today.
type Shipment struct {
	ID     int    `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

// Profile is the full driver profile bound to an access token. Relation
// sub-objects are optional; a nil pointer means the relation is either
// unknown or filtered out of the response.
type Profile struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	PhoneNumber  string       `json:"phone_number"`
	LicensePlate string       `json:"license_plate"`
	Status       DriverStatus `json:"status"`

	Position       *Position     `json:"position,omitempty"`
	License        *License      `json:"license,omitempty"`
	Vehicle        *Vehicle      `json:"vehicle,omitempty"`
	Salary         *Salary       `json:"salary,omitempty"`
	Insurance      *Insurance    `json:"insurance,omitempty"`
	TodaySummary   *TodaySummary `json:"today_summary,omitempty"`
	TodayShipments []Shipment    `json:"today_shipments,omitempty"`
}

// Clone returns a deep copy of the profile. Token snapshots and response
// filtering both rely on copies so shared state is never mutated.
func (p Profile) Clone() Profile {
	out := p
	if p.Position != nil {
		v := *p.Position
		out.Position = &v
	}
	if p.License != nil {
		v := *p.License
		out.License = &v
	}
	if p.Vehicle != nil {
		v := *p.Vehicle
		out.Vehicle = &v
	}
	if p.Salary != nil {
		v := *p.Salary
		out.Salary = &v
	}
	if p.Insurance != nil {
		v := *p.Insurance
		out.Insurance = &v
	}
	if p.TodaySummary != nil {
		v := *p.TodaySummary
		out.TodaySummary = &v
	}
	if p.TodayShipments != nil {
		out.TodayShipments = append([]Shipment(nil), p.TodayShipments...)
	}
	return out
}
