package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanchuyen/driver-gateway/internal/model"
)

func TestSeededRepo_FindByPhoneAndPlate(t *testing.T) {
	r := NewSeededDriverRepo()
	ctx := context.Background()

	d, err := r.FindByPhoneAndPlate(ctx, "+84905123456", "92A-12345")
	require.NoError(t, err)
	assert.Equal(t, 1024, d.ID)
	assert.True(t, d.RequiresOTP)
	assert.Equal(t, 501, d.VehicleID)

	_, err = r.FindByPhoneAndPlate(ctx, "+84905123456", "11X-00000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeededRepo_ProfileReturnsCopy(t *testing.T) {
	r := NewSeededDriverRepo()
	ctx := context.Background()

	p1, err := r.ProfileByID(ctx, 1024)
	require.NoError(t, err)
	require.NotNil(t, p1.Salary)

	p1.Salary.BaseAmount = 0
	p1.Name = "changed"

	p2, err := r.ProfileByID(ctx, 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(12_000_000), p2.Salary.BaseAmount, "callers must not be able to mutate the stored profile")
	assert.Equal(t, "Nguyễn Văn A", p2.Name)
}

func TestMemoryRepo_PutDriverBackfillsBareProfile(t *testing.T) {
	r := NewMemoryDriverRepo()
	ctx := context.Background()

	r.PutDriver(model.Driver{
		ID:           9,
		Name:         "Trần Văn B",
		PhoneNumber:  "+84900000009",
		LicensePlate: "43A-00009",
		Status:       model.DriverActive,
	})

	p, err := r.ProfileByID(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Trần Văn B", p.Name)
	assert.Nil(t, p.Vehicle)
}

func TestMemoryRepo_NotFound(t *testing.T) {
	r := NewMemoryDriverRepo()
	ctx := context.Background()

	_, err := r.GetByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.ProfileByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.VehicleByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
