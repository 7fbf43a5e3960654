package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
	"parking_management/internal/repository/memory"
)

// fixture wires every service over the in-memory store with a fixed clock,
// so lifecycle tests are deterministic.
type fixture struct {
	clock time.Time
	seq   int

	users        repository.UserRepository
	vehicles     repository.VehicleRepository
	tariffs      repository.TariffRepository
	lots         repository.ParkingLotRepository
	spots        repository.SpotRepository
	reservations *ReservationService
	sessions     *ParkingSessionService
	spotService  *SpotService
	auth         *AuthService

	userService    *UserService
	vehicleService *VehicleService
	tariffService  *TariffService
	lotService     *ParkingLotService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	logger := zap.NewNop()
	tx := memory.NewTxManager(store)

	f := &fixture{
		clock:    time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		users:    memory.NewUserRepository(store),
		vehicles: memory.NewVehicleRepository(store),
		tariffs:  memory.NewTariffRepository(store),
		lots:     memory.NewParkingLotRepository(store),
		spots:    memory.NewSpotRepository(store),
	}
	now := func() time.Time { return f.clock }

	accounts := memory.NewAccountRepository(store)
	reservationRepo := memory.NewReservationRepository(store)
	sessionRepo := memory.NewParkingSessionRepository(store)

	f.reservations = NewReservationService(reservationRepo, sessionRepo, f.spots, f.vehicles, f.users, tx, logger)
	f.reservations.now = now
	f.sessions = NewParkingSessionService(sessionRepo, reservationRepo, f.spots, f.vehicles, f.users, f.lots, f.tariffs, tx, NopNotifier(), logger)
	f.sessions.now = now
	f.spotService = NewSpotService(f.spots, f.lots, reservationRepo, sessionRepo, NopNotifier(), logger)
	f.spotService.now = now
	f.userService = NewUserService(f.users, f.vehicles, logger)
	f.userService.now = now
	f.vehicleService = NewVehicleService(f.vehicles, f.users, reservationRepo, sessionRepo, logger)
	f.vehicleService.now = now
	f.tariffService = NewTariffService(f.tariffs, f.lots, logger)
	f.tariffService.now = now
	f.lotService = NewParkingLotService(f.lots, f.spots, f.tariffs, reservationRepo, sessionRepo, tx, logger)
	f.lotService.now = now
	// Token expiry is validated against the wall clock, so the auth service
	// keeps the real clock.
	f.auth = NewAuthService(accounts, f.users, tx, "test-secret", time.Hour, logger)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *fixture) createUser(t *testing.T, email string, permit bool) *domain.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), &domain.User{
		Email:          email,
		Status:         domain.UserActive,
		DisabledPermit: permit,
		Created:        f.clock,
		Changed:        f.clock,
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) createVehicle(t *testing.T, userID int64, plate string, vType domain.VehicleType) *domain.Vehicle {
	t.Helper()
	vehicle, err := f.vehicles.Create(context.Background(), &domain.Vehicle{
		PlateNumber: plate,
		Type:        vType,
		UserID:      userID,
		Created:     f.clock,
		Changed:     f.clock,
	})
	require.NoError(t, err)
	return vehicle
}

// createSpot seeds a tariff, a lot attached to it and one spot of the given
// type, and returns the spot.
func (f *fixture) createSpot(t *testing.T, sType domain.SpotType) *domain.Spot {
	t.Helper()
	ctx := context.Background()
	f.seq++
	tariff, err := f.tariffs.Create(ctx, &domain.Tariff{
		Name:               fmt.Sprintf("standard-%d", f.seq),
		HourPrice:          60.00,
		BillingStepMinutes: 15,
		FreeMinutes:        10,
		Status:             domain.TariffActive,
		Created:            f.clock,
		Changed:            f.clock,
	})
	require.NoError(t, err)
	lot, err := f.lots.Create(ctx, &domain.ParkingLot{
		Name:     "Lot",
		Address:  fmt.Sprintf("1 Main St #%d", f.seq),
		Status:   domain.LotOpen,
		TariffID: tariff.ID,
		Created:  f.clock,
		Changed:  f.clock,
	})
	require.NoError(t, err)
	spot, err := f.spots.Create(ctx, &domain.Spot{
		Number:       1,
		Type:         sType,
		Status:       domain.SpotAvailable,
		ParkingLotID: lot.ID,
		Level:        0,
		Created:      f.clock,
		Changed:      f.clock,
	})
	require.NoError(t, err)
	return spot
}

func owner(user *domain.User) domain.Principal {
	return domain.Principal{UserID: user.ID, Role: domain.RoleUser}
}

var admin = domain.Principal{UserID: 0, Role: domain.RoleAdmin}
