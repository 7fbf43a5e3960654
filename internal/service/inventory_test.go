package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

func TestTariffActivatesOnFirstAttach(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tariff, err := f.tariffService.Create(ctx, domain.TariffCreateUpdateDTO{
		Name:               "night",
		HourPrice:          20.00,
		BillingStepMinutes: 30,
		FreeMinutes:        0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TariffInactive, tariff.Status)

	lot, err := f.lotService.Create(ctx, domain.ParkingLotCreateUpdateDTO{
		Name:     "Central",
		Address:  "1 Main St",
		TariffID: tariff.ID,
	})
	require.NoError(t, err)

	got, err := f.tariffs.FindByID(ctx, tariff.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TariffActive, got.Status)

	// An attached tariff can neither be deactivated nor deleted.
	_, err = f.tariffService.ChangeStatus(ctx, tariff.ID, domain.TariffInactive)
	assert.ErrorIs(t, err, ErrTariffInUse)
	assert.ErrorIs(t, f.tariffService.Delete(ctx, tariff.ID), ErrTariffInUse)

	require.NoError(t, f.lotService.Delete(ctx, lot.ID))
	require.NoError(t, f.tariffService.Delete(ctx, tariff.ID))
}

func TestTariffNameUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := domain.TariffCreateUpdateDTO{Name: "day", HourPrice: 10, BillingStepMinutes: 60}
	_, err := f.tariffService.Create(ctx, dto)
	require.NoError(t, err)
	_, err = f.tariffService.Create(ctx, dto)
	assert.ErrorIs(t, err, ErrTariffNameTaken)
}

func TestParkingLotAddressUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spot := f.createSpot(t, domain.SpotStandard)
	lot, err := f.lots.FindByID(ctx, spot.ParkingLotID)
	require.NoError(t, err)

	_, err = f.lotService.Create(ctx, domain.ParkingLotCreateUpdateDTO{
		Name:     "Twin",
		Address:  lot.Address,
		TariffID: lot.TariffID,
	})
	assert.ErrorIs(t, err, ErrAddressTaken)
}

func TestParkingLotDeleteCascadesSpots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spot := f.createSpot(t, domain.SpotStandard)

	require.NoError(t, f.lotService.Delete(ctx, spot.ParkingLotID))

	_, err := f.spots.FindByID(ctx, spot.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestParkingLotDeleteBlockedByReservedSpot(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)

	err := f.lotService.Delete(context.Background(), spot.ParkingLotID)
	assert.ErrorIs(t, err, ErrSpotInUse)
}

func TestSpotNumberUniquePerLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	spot := f.createSpot(t, domain.SpotStandard)

	_, err := f.spotService.Create(ctx, domain.SpotCreateDTO{
		Number:       spot.Number,
		Type:         domain.SpotStandard,
		ParkingLotID: spot.ParkingLotID,
	})
	assert.ErrorIs(t, err, ErrSpotNumberTaken)

	// The same number in another lot is fine.
	other := f.createSpot(t, domain.SpotStandard)
	assert.Equal(t, spot.Number, other.Number)
	assert.NotEqual(t, spot.ParkingLotID, other.ParkingLotID)
}

func TestSpotStatusOverride(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	// OCCUPIED belongs to the session lifecycle.
	_, err := f.spotService.ChangeStatus(ctx, spot.ID, domain.SpotOccupied)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	updated, err := f.spotService.ChangeStatus(ctx, spot.ID, domain.SpotOutOfService)
	require.NoError(t, err)
	assert.Equal(t, domain.SpotOutOfService, updated.Status)
	_, err = f.spotService.ChangeStatus(ctx, spot.ID, domain.SpotAvailable)
	require.NoError(t, err)

	// While a session holds the spot the override is refused.
	f.startSession(t, owner(user), vehicle.ID, spot.ID, nil)
	_, err = f.spotService.ChangeStatus(ctx, spot.ID, domain.SpotOutOfService)
	assert.ErrorIs(t, err, ErrSpotSessionConflict)
}

func TestUserDeleteBlockedByVehicles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)

	assert.ErrorIs(t, f.userService.Delete(ctx, user.ID), ErrUserInUse)

	require.NoError(t, f.vehicleService.Delete(ctx, owner(user), vehicle.ID))
	require.NoError(t, f.userService.Delete(ctx, user.ID))
}

func TestVehicleDeleteBlockedByHistory(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)

	err := f.vehicleService.Delete(context.Background(), owner(user), vehicle.ID)
	assert.ErrorIs(t, err, ErrVehicleInUse)
}

func TestVehiclePlateUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "alice@example.com", false)

	_, err := f.vehicleService.Create(ctx, owner(user), domain.VehicleCreateUpdateDTO{
		PlateNumber: "AB-123",
		Type:        domain.VehicleCar,
		UserID:      user.ID,
	})
	require.NoError(t, err)

	_, err = f.vehicleService.Create(ctx, owner(user), domain.VehicleCreateUpdateDTO{
		PlateNumber: "AB-123",
		Type:        domain.VehicleCar,
		UserID:      user.ID,
	})
	assert.ErrorIs(t, err, ErrPlateNumberTaken)
}

func TestUserBlockedCannotReserve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	_, err := f.userService.ChangeStatus(ctx, user.ID, domain.UserBlocked)
	require.NoError(t, err)

	_, err = f.reservations.Create(ctx, owner(user), domain.ReservationCreateDTO{
		VehicleID: vehicle.ID,
		SpotID:    spot.ID,
		StartTime: f.clock.Add(time.Hour),
		EndTime:   f.clock.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrUserNotActive)
}
