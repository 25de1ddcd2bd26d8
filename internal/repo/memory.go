package repo

import (
	"context"
	"sync"

	"github.com/vanchuyen/driver-gateway/internal/model"
)

// MemoryDriverRepo is an in-memory account directory. It backs dev mode and
// tests; production points DATABASE_URL at the Postgres repo instead.
type MemoryDriverRepo struct {
	mu       sync.RWMutex
	drivers  map[int]model.Driver
	vehicles map[int]model.Vehicle
	profiles map[int]model.Profile
}

// NewMemoryDriverRepo creates an empty in-memory directory.
func NewMemoryDriverRepo() *MemoryDriverRepo {
	return &MemoryDriverRepo{
		drivers:  make(map[int]model.Driver),
		vehicles: make(map[int]model.Vehicle),
		profiles: make(map[int]model.Profile),
	}
}

// NewSeededDriverRepo returns a directory preloaded with the demo fleet.
// Both demo accounts use the password "123456".
func NewSeededDriverRepo() *MemoryDriverRepo {
	// hex SHA-256 of "123456"
	const demoPasswordHash = "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92"

	r := NewMemoryDriverRepo()

	r.PutVehicle(model.Vehicle{ID: 501, LicensePlate: "92A-12345", Type: "truck_5t", Status: model.VehicleActive})
	r.PutVehicle(model.Vehicle{ID: 502, LicensePlate: "75A-12345", Type: "truck_2t", Status: model.VehicleActive})

	r.PutDriver(model.Driver{
		ID:             1024,
		Name:           "Nguyễn Văn A",
		PhoneNumber:    "+84905123456",
		LicensePlate:   "92A-12345",
		Status:         model.DriverActive,
		PasswordHash:   demoPasswordHash,
		RequiresOTP:    true,
		VehicleID:      501,
		VehicleAllowed: true,
	})
	r.PutDriver(model.Driver{
		ID:             123,
		Name:           "Nguyen Van A",
		PhoneNumber:    "+84912345678",
		LicensePlate:   "75A-12345",
		Status:         model.DriverActive,
		PasswordHash:   demoPasswordHash,
		RequiresOTP:    false,
		VehicleID:      502,
		VehicleAllowed: true,
	})

	vehicle := model.Vehicle{ID: 501, LicensePlate: "92A-12345", Type: "truck_5t", Status: model.VehicleActive}
	r.PutProfile(model.Profile{
		ID:           1024,
		Name:         "Nguyễn Văn A",
		PhoneNumber:  "+84905123456",
		LicensePlate: "92A-12345",
		Status:       model.DriverActive,
		Position:     &model.Position{Title: "Tài xế chính", Depot: "Đà Nẵng", Since: "2021-03-01"},
		License:      &model.License{Number: "790123456789", Class: "C", ExpiresAt: "2027-06-30"},
		Vehicle:      &vehicle,
		Salary:       &model.Salary{BaseAmount: 12_000_000, Currency: "VND", Period: "monthly"},
		Insurance:    &model.Insurance{Provider: "PVI", PolicyNumber: "PVI-2024-88421", ValidUntil: "2026-12-31"},
		TodaySummary: &model.TodaySummary{Trips: 3, DistanceKM: 86.4, CodAmount: 1_250_000},
		TodayShipments: []model.Shipment{
			{ID: 9001, Code: "VC-240829-001", Status: "delivered"},
			{ID: 9002, Code: "VC-240829-002", Status: "in_transit"},
		},
	})

	vehicle2 := model.Vehicle{ID: 502, LicensePlate: "75A-12345", Type: "truck_2t", Status: model.VehicleActive}
	r.PutProfile(model.Profile{
		ID:           123,
		Name:         "Nguyen Van A",
		PhoneNumber:  "+84912345678",
		LicensePlate: "75A-12345",
		Status:       model.DriverActive,
		Vehicle:      &vehicle2,
	})

	return r
}

// PutDriver inserts or replaces a driver.
func (r *MemoryDriverRepo) PutDriver(d model.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[d.ID] = d
	if _, ok := r.profiles[d.ID]; !ok {
		r.profiles[d.ID] = model.Profile{
			ID:           d.ID,
			Name:         d.Name,
			PhoneNumber:  d.PhoneNumber,
			LicensePlate: d.LicensePlate,
			Status:       d.Status,
		}
	}
}

// PutVehicle inserts or replaces a vehicle.
func (r *MemoryDriverRepo) PutVehicle(v model.Vehicle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.vehicles[v.ID] = v
}

// PutProfile inserts or replaces a full profile.
func (r *MemoryDriverRepo) PutProfile(p model.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
}

func (r *MemoryDriverRepo) FindByPhoneAndPlate(ctx context.Context, phone, plate string) (model.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.drivers {
		if d.PhoneNumber == phone && d.LicensePlate == plate {
			return d, nil
		}
	}
	return model.Driver{}, ErrNotFound
}

func (r *MemoryDriverRepo) GetByID(ctx context.Context, id int) (model.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[id]
	if !ok {
		return model.Driver{}, ErrNotFound
	}
	return d, nil
}

func (r *MemoryDriverRepo) ProfileByID(ctx context.Context, id int) (model.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return model.Profile{}, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryDriverRepo) VehicleByID(ctx context.Context, id int) (model.Vehicle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.vehicles[id]
	if !ok {
		return model.Vehicle{}, ErrNotFound
	}
	return v, nil
}
