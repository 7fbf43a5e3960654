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

// reserve books the window [clock+startIn, clock+endIn) and fails the test on
// any error.
func (f *fixture) reserve(t *testing.T, p domain.Principal, vehicleID, spotID int64, startIn, endIn time.Duration) *domain.Reservation {
	t.Helper()
	reservation, err := f.reservations.Create(context.Background(), p, domain.ReservationCreateDTO{
		VehicleID: vehicleID,
		SpotID:    spotID,
		StartTime: f.clock.Add(startIn),
		EndTime:   f.clock.Add(endIn),
	})
	require.NoError(t, err)
	return reservation
}

func TestReservationCreate(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)

	assert.Equal(t, domain.ReservationActive, reservation.Status)
	assert.Equal(t, vehicle.ID, reservation.VehicleID)
	assert.Equal(t, spot.ID, reservation.SpotID)
	assert.Equal(t, time.UTC, reservation.StartTime.Location())
	assert.True(t, reservation.EndTime.After(reservation.StartTime))
}

func TestReservationCreateInvalidInterval(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	start := f.clock.Add(time.Hour)
	_, err := f.reservations.Create(context.Background(), owner(user), domain.ReservationCreateDTO{
		VehicleID: vehicle.ID,
		SpotID:    spot.ID,
		StartTime: start,
		EndTime:   start,
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestReservationCreateOverlap(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", false)
	bob := f.createUser(t, "bob@example.com", false)
	aliceCar := f.createVehicle(t, alice.ID, "AB-123", domain.VehicleCar)
	bobCar := f.createVehicle(t, bob.ID, "CD-456", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	// Alice holds [10:00, 11:00).
	f.reserve(t, owner(alice), aliceCar.ID, spot.ID, time.Hour, 2*time.Hour)

	// [10:30, 10:45) overlaps the held window.
	_, err := f.reservations.Create(context.Background(), owner(bob), domain.ReservationCreateDTO{
		VehicleID: bobCar.ID,
		SpotID:    spot.ID,
		StartTime: f.clock.Add(90 * time.Minute),
		EndTime:   f.clock.Add(105 * time.Minute),
	})
	assert.ErrorIs(t, err, ErrTimeOverlap)
	assert.ErrorIs(t, err, ErrConflict)

	// [11:00, 12:00) touches the held window and is allowed.
	f.reserve(t, owner(bob), bobCar.ID, spot.ID, 2*time.Hour, 3*time.Hour)
}

func TestReservationCreateSpotNotAvailable(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)
	require.NoError(t, f.spots.UpdateStatus(context.Background(), spot.ID, domain.SpotOutOfService, f.clock))

	_, err := f.reservations.Create(context.Background(), owner(user), domain.ReservationCreateDTO{
		VehicleID: vehicle.ID,
		SpotID:    spot.ID,
		StartTime: f.clock.Add(time.Hour),
		EndTime:   f.clock.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrSpotNotAvailable)
}

func TestReservationCreateEligibility(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	car := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	electricSpot := f.createSpot(t, domain.SpotElectric)

	_, err := f.reservations.Create(context.Background(), owner(user), domain.ReservationCreateDTO{
		VehicleID: car.ID,
		SpotID:    electricSpot.ID,
		StartTime: f.clock.Add(time.Hour),
		EndTime:   f.clock.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrVehicleTypeMismatch)
	assert.ErrorIs(t, err, ErrEligibility)
}

func TestReservationCreateForbiddenForOtherUser(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", false)
	bob := f.createUser(t, "bob@example.com", false)
	aliceCar := f.createVehicle(t, alice.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	_, err := f.reservations.Create(context.Background(), owner(bob), domain.ReservationCreateDTO{
		VehicleID: aliceCar.ID,
		SpotID:    spot.ID,
		StartTime: f.clock.Add(time.Hour),
		EndTime:   f.clock.Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrNotOwner)

	// An admin may book on behalf of any user.
	f.reserve(t, admin, aliceCar.ID, spot.ID, time.Hour, 2*time.Hour)
}

func TestReservationUpdateEndTime(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", false)
	bob := f.createUser(t, "bob@example.com", false)
	aliceCar := f.createVehicle(t, alice.ID, "AB-123", domain.VehicleCar)
	bobCar := f.createVehicle(t, bob.ID, "CD-456", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(alice), aliceCar.ID, spot.ID, time.Hour, 2*time.Hour)

	// Extending over its own window is not a conflict with itself.
	updated, err := f.reservations.Update(context.Background(), owner(alice), reservation.ID, domain.ReservationUpdateDTO{
		EndTime: f.clock.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, f.clock.Add(3*time.Hour), updated.EndTime)

	// Bob now holds [12:00, 13:00); extending Alice into it fails.
	f.reserve(t, owner(bob), bobCar.ID, spot.ID, 3*time.Hour, 4*time.Hour)
	_, err = f.reservations.Update(context.Background(), owner(alice), reservation.ID, domain.ReservationUpdateDTO{
		EndTime: f.clock.Add(3*time.Hour + 30*time.Minute),
	})
	assert.ErrorIs(t, err, ErrTimeOverlap)

	_, err = f.reservations.Update(context.Background(), owner(alice), reservation.ID, domain.ReservationUpdateDTO{
		EndTime: reservation.StartTime,
	})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestReservationCancel(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)

	cancelled, err := f.reservations.Cancel(context.Background(), owner(user), reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, cancelled.Status)

	// Cancelling again is a no-op, not an error.
	again, err := f.reservations.Cancel(context.Background(), owner(user), reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, again.Status)

	// A cancelled window no longer blocks new bookings.
	f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)
}

func TestReservationCancelExpired(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, 0, 30*time.Minute)
	f.advance(time.Hour)

	_, err := f.reservations.Cancel(context.Background(), owner(user), reservation.ID)
	assert.ErrorIs(t, err, ErrCannotCancelExpired)
}

func TestReservationExpirySweep(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	ended := f.reserve(t, owner(user), vehicle.ID, spot.ID, 0, 30*time.Minute)
	open := f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)

	f.advance(30 * time.Minute)

	// Any read sweeps first, so the closed window is already EXPIRED.
	got, err := f.reservations.GetByID(context.Background(), owner(user), ended.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationExpired, got.Status)

	got, err = f.reservations.GetByID(context.Background(), owner(user), open.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationActive, got.Status)

	// The freed window can be booked again.
	f.reserve(t, owner(user), vehicle.ID, spot.ID, -30*time.Minute, 0)
}

func TestReservationUpdateAfterExpiry(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, 0, 30*time.Minute)
	f.advance(time.Hour)

	_, err := f.reservations.Update(context.Background(), owner(user), reservation.ID, domain.ReservationUpdateDTO{
		EndTime: f.clock.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrReservationNotActive)
}

func TestReservationGetByIDForbidden(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", false)
	bob := f.createUser(t, "bob@example.com", false)
	aliceCar := f.createVehicle(t, alice.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(alice), aliceCar.ID, spot.ID, time.Hour, 2*time.Hour)

	_, err := f.reservations.GetByID(context.Background(), owner(bob), reservation.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.reservations.GetByID(context.Background(), admin, reservation.ID)
	assert.NoError(t, err)
}

func TestReservationDelete(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)
	require.NoError(t, f.reservations.Delete(context.Background(), owner(user), reservation.ID))

	_, err := f.reservations.GetByID(context.Background(), owner(user), reservation.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
