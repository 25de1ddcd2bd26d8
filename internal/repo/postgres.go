package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vanchuyen/driver-gateway/internal/model"
)

// PostgresDriverRepo is the Postgres-backed account directory.
type PostgresDriverRepo struct {
	db *sql.DB
}

// NewPostgresDriverRepo creates a Postgres-backed DriverRepo.
func NewPostgresDriverRepo(db *sql.DB) *PostgresDriverRepo {
	return &PostgresDriverRepo{db: db}
}

const driverColumns = `id, name, phone_number, license_plate, status, password_hash, requires_otp, vehicle_id, vehicle_allowed`

func scanDriver(row *sql.Row) (model.Driver, error) {
	var d model.Driver
	var vehicleID sql.NullInt64
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.PhoneNumber,
		&d.LicensePlate,
		&d.Status,
		&d.PasswordHash,
		&d.RequiresOTP,
		&vehicleID,
		&d.VehicleAllowed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Driver{}, ErrNotFound
		}
		return model.Driver{}, fmt.Errorf("scan driver: %w", err)
	}
	if vehicleID.Valid {
		d.VehicleID = int(vehicleID.Int64)
	}
	return d, nil
}

func (r *PostgresDriverRepo) FindByPhoneAndPlate(ctx context.Context, phone, plate string) (model.Driver, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE phone_number = $1 AND license_plate = $2
	`, phone, plate)
	return scanDriver(row)
}

func (r *PostgresDriverRepo) GetByID(ctx context.Context, id int) (model.Driver, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE id = $1
	`, id)
	return scanDriver(row)
}

// ProfileByID builds the profile from the drivers and vehicles tables. The
// richer relation sub-objects (salary, insurance, daily activity) live in
// upstream systems and stay empty here.
func (r *PostgresDriverRepo) ProfileByID(ctx context.Context, id int) (model.Profile, error) {
	d, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Profile{}, err
	}
	p := model.Profile{
		ID:           d.ID,
		Name:         d.Name,
		PhoneNumber:  d.PhoneNumber,
		LicensePlate: d.LicensePlate,
		Status:       d.Status,
	}
	if d.VehicleID != 0 {
		v, err := r.VehicleByID(ctx, d.VehicleID)
		if err == nil {
			p.Vehicle = &v
		} else if !errors.Is(err, ErrNotFound) {
			return model.Profile{}, err
		}
	}
	return p, nil
}

func (r *PostgresDriverRepo) VehicleByID(ctx context.Context, id int) (model.Vehicle, error) {
	var v model.Vehicle
	err := r.db.QueryRowContext(ctx, `
		SELECT id, license_plate, type, status
		FROM vehicles
		WHERE id = $1
	`, id).Scan(&v.ID, &v.LicensePlate, &v.Type, &v.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, ErrNotFound
		}
		return model.Vehicle{}, fmt.Errorf("query vehicle: %w", err)
	}
	return v, nil
}
