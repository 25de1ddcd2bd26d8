package repo

import (
	"context"
	"errors"

	"github.com/vanchuyen/driver-gateway/internal/model"
)

// ErrNotFound signals a missing driver or vehicle.
var ErrNotFound = errors.New("not found")

// DriverRepo is the account directory consumed by the auth engine.
type DriverRepo interface {
	// FindByPhoneAndPlate looks up a driver by its normalized identifier pair.
	FindByPhoneAndPlate(ctx context.Context, phone, plate string) (model.Driver, error)
	GetByID(ctx context.Context, id int) (model.Driver, error)
	// ProfileByID returns the full profile including relation sub-objects
	// where the backing store has them.
	ProfileByID(ctx context.Context, id int) (model.Profile, error)
	VehicleByID(ctx context.Context, id int) (model.Vehicle, error)
}
