package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_management/internal/domain"
)

func (f *fixture) startSession(t *testing.T, p domain.Principal, vehicleID, spotID int64, reservationID *int64) *domain.ParkingSession {
	t.Helper()
	session, err := f.sessions.Create(context.Background(), p, domain.ParkingSessionCreateDTO{
		VehicleID:     vehicleID,
		SpotID:        spotID,
		ReservationID: reservationID,
	})
	require.NoError(t, err)
	return session
}

func TestSessionDirectStart(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	session := f.startSession(t, owner(user), vehicle.ID, spot.ID, nil)

	assert.Equal(t, domain.SessionActive, session.Status)
	assert.False(t, session.EndTime.Valid)
	assert.False(t, session.ReservationID.Valid)
	assert.False(t, session.TotalCost.Valid)

	got, err := f.spots.FindByID(context.Background(), spot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SpotOccupied, got.Status)
}

func TestSessionExclusivity(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	first := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	second := f.createVehicle(t, user.ID, "CD-456", domain.VehicleCar)
	spotA := f.createSpot(t, domain.SpotStandard)
	spotB := f.createSpot(t, domain.SpotStandard)

	f.startSession(t, owner(user), first.ID, spotA.ID, nil)

	// The occupied spot refuses a second vehicle.
	_, err := f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
		VehicleID: second.ID,
		SpotID:    spotA.ID,
	})
	assert.ErrorIs(t, err, ErrSpotNotAvailable)

	// The parked vehicle cannot open a second session elsewhere.
	_, err = f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
		VehicleID: first.ID,
		SpotID:    spotB.ID,
	})
	assert.ErrorIs(t, err, ErrVehicleSessionConflict)
}

func TestSessionWalkInBlockedByReservation(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", false)
	bob := f.createUser(t, "bob@example.com", false)
	aliceCar := f.createVehicle(t, alice.ID, "AB-123", domain.VehicleCar)
	bobCar := f.createVehicle(t, bob.ID, "CD-456", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	// Alice holds the spot for the current hour.
	f.reserve(t, owner(alice), aliceCar.ID, spot.ID, 0, time.Hour)

	_, err := f.sessions.Create(context.Background(), owner(bob), domain.ParkingSessionCreateDTO{
		VehicleID: bobCar.ID,
		SpotID:    spot.ID,
	})
	assert.ErrorIs(t, err, ErrReservationHoldsSpot)

	// Once the hold lapses the walk-in goes through.
	f.advance(time.Hour)
	f.startSession(t, owner(bob), bobCar.ID, spot.ID, nil)
}

func TestSessionFromReservationLifecycle(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, 0, time.Hour)

	session := f.startSession(t, owner(user), vehicle.ID, spot.ID, &reservation.ID)
	require.True(t, session.ReservationID.Valid)
	assert.Equal(t, reservation.ID, session.ReservationID.Int64)

	got, err := f.spots.FindByID(context.Background(), spot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SpotOccupied, got.Status)

	// Tariff is 60.00/h in 15 minute steps with 10 free minutes, so 40
	// minutes bills 30.00.
	f.advance(40 * time.Minute)
	finished, err := f.sessions.Finish(context.Background(), owner(user), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFinished, finished.Status)
	require.True(t, finished.EndTime.Valid)
	assert.Equal(t, f.clock, finished.EndTime.Time)
	require.True(t, finished.TotalCost.Valid)
	assert.InDelta(t, 30.00, finished.TotalCost.Float64, 0.001)

	got, err = f.spots.FindByID(context.Background(), spot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SpotAvailable, got.Status)

	// Finishing consumes the backing reservation even mid-window.
	consumed, err := f.reservations.GetByID(context.Background(), owner(user), reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationExpired, consumed.Status)
}

func TestSessionFinishTwice(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	session := f.startSession(t, owner(user), vehicle.ID, spot.ID, nil)
	f.advance(5 * time.Minute)
	_, err := f.sessions.Finish(context.Background(), owner(user), session.ID)
	require.NoError(t, err)

	_, err = f.sessions.Finish(context.Background(), owner(user), session.ID)
	assert.ErrorIs(t, err, ErrSessionFinished)
}

func TestSessionFromReservationOutsideWindow(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, time.Hour, 2*time.Hour)

	_, err := f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
		VehicleID:     vehicle.ID,
		SpotID:        spot.ID,
		ReservationID: &reservation.ID,
	})
	assert.ErrorIs(t, err, ErrOutsideWindow)

	// Inside the window it starts.
	f.advance(time.Hour)
	f.startSession(t, owner(user), vehicle.ID, spot.ID, &reservation.ID)
}

func TestSessionFromReservationMismatch(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	booked := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	other := f.createVehicle(t, user.ID, "CD-456", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), booked.ID, spot.ID, 0, time.Hour)

	_, err := f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
		VehicleID:     other.ID,
		SpotID:        spot.ID,
		ReservationID: &reservation.ID,
	})
	assert.ErrorIs(t, err, ErrReservationMismatch)
}

func TestSessionFromConsumedReservation(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, 0, time.Hour)
	session := f.startSession(t, owner(user), vehicle.ID, spot.ID, &reservation.ID)

	f.advance(5 * time.Minute)
	_, err := f.sessions.Finish(context.Background(), owner(user), session.ID)
	require.NoError(t, err)

	// The reservation is spent; it cannot back another session.
	_, err = f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
		VehicleID:     vehicle.ID,
		SpotID:        spot.ID,
		ReservationID: &reservation.ID,
	})
	assert.ErrorIs(t, err, ErrReservationNotActive)
}

func TestSessionFromCancelledReservation(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	reservation := f.reserve(t, owner(user), vehicle.ID, spot.ID, 0, time.Hour)
	_, err := f.reservations.Cancel(context.Background(), owner(user), reservation.ID)
	require.NoError(t, err)

	_, err = f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
		VehicleID:     vehicle.ID,
		SpotID:        spot.ID,
		ReservationID: &reservation.ID,
	})
	assert.ErrorIs(t, err, ErrReservationNotActive)
}

func TestSessionEligibilityOnDirectStartOnly(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", true)
	car := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	disabledSpot := f.createSpot(t, domain.SpotDisabled)

	reservation := f.reserve(t, owner(user), car.ID, disabledSpot.ID, 0, time.Hour)

	// The permit lapses after booking; starting from the reservation still
	// succeeds because eligibility was settled at booking time.
	user.DisabledPermit = false
	_, err := f.users.Update(context.Background(), user)
	require.NoError(t, err)

	f.startSession(t, owner(user), car.ID, disabledSpot.ID, &reservation.ID)
}

func TestSessionDirectStartEligibility(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	car := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	electricSpot := f.createSpot(t, domain.SpotElectric)

	_, err := f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
		VehicleID: car.ID,
		SpotID:    electricSpot.ID,
	})
	assert.ErrorIs(t, err, ErrVehicleTypeMismatch)
}

func TestSessionDelete(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	vehicle := f.createVehicle(t, user.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	session := f.startSession(t, owner(user), vehicle.ID, spot.ID, nil)

	err := f.sessions.Delete(context.Background(), owner(user), session.ID)
	assert.ErrorIs(t, err, ErrSessionStillActive)

	f.advance(5 * time.Minute)
	_, err = f.sessions.Finish(context.Background(), owner(user), session.ID)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Delete(context.Background(), owner(user), session.ID))
}

func TestSessionConcurrentStartSingleWinner(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "alice@example.com", false)
	spot := f.createSpot(t, domain.SpotStandard)

	const racers = 16
	vehicles := make([]*domain.Vehicle, racers)
	for i := range vehicles {
		vehicles[i] = f.createVehicle(t, user.ID, fmt.Sprintf("AB-%03d", i), domain.VehicleCar)
	}

	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.sessions.Create(context.Background(), owner(user), domain.ParkingSessionCreateDTO{
				VehicleID: vehicles[i].ID,
				SpotID:    spot.ID,
			})
		}(i)
	}
	wg.Wait()

	// Exactly one racer takes the spot; the rest lose with a conflict.
	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		assert.ErrorIs(t, err, ErrConflict)
	}
	assert.Equal(t, 1, winners)

	got, err := f.spots.FindByID(context.Background(), spot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SpotOccupied, got.Status)
}

func TestSessionForbiddenForOtherUser(t *testing.T) {
	f := newFixture(t)
	alice := f.createUser(t, "alice@example.com", false)
	bob := f.createUser(t, "bob@example.com", false)
	aliceCar := f.createVehicle(t, alice.ID, "AB-123", domain.VehicleCar)
	spot := f.createSpot(t, domain.SpotStandard)

	session := f.startSession(t, owner(alice), aliceCar.ID, spot.ID, nil)

	_, err := f.sessions.Finish(context.Background(), owner(bob), session.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.sessions.GetByID(context.Background(), owner(bob), session.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
