package repository

import (
	"context"
	"errors"
	"time"

	"parking_management/internal/domain"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEntry = errors.New("record already exists")
)

// TxManager runs a function as one atomic unit of work. Repository calls made
// with the context it passes to fn join the same transaction, so invariant
// checks and the writes that depend on them commit or roll back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	UpdateRole(ctx context.Context, userID int64, role string) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id int64) (*domain.Vehicle, error)
	FindAll(ctx context.Context) ([]domain.Vehicle, error)
	FindByUserID(ctx context.Context, userID int64) ([]domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	Delete(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByUserID(ctx context.Context, userID int64) (bool, error)
	ExistsByPlateNumber(ctx context.Context, plateNumber string, excludeID int64) (bool, error)
}

type TariffRepository interface {
	Create(ctx context.Context, tariff *domain.Tariff) (*domain.Tariff, error)
	FindByID(ctx context.Context, id int64) (*domain.Tariff, error)
	FindAll(ctx context.Context) ([]domain.Tariff, error)
	Update(ctx context.Context, tariff *domain.Tariff) (*domain.Tariff, error)
	Delete(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
}

type ParkingLotRepository interface {
	Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	FindByID(ctx context.Context, id int64) (*domain.ParkingLot, error)
	FindAll(ctx context.Context) ([]domain.ParkingLot, error)
	Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error)
	Delete(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByAddress(ctx context.Context, address string, excludeID int64) (bool, error)
	ExistsByTariffID(ctx context.Context, tariffID int64) (bool, error)
}

type SpotRepository interface {
	Create(ctx context.Context, spot *domain.Spot) (*domain.Spot, error)
	FindByID(ctx context.Context, id int64) (*domain.Spot, error)
	// FindByIDForUpdate locks the spot row for the duration of the enclosing
	// transaction so concurrent check-then-act sequences serialize per spot.
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Spot, error)
	FindAll(ctx context.Context) ([]domain.Spot, error)
	FindByParkingLotID(ctx context.Context, parkingLotID int64) ([]domain.Spot, error)
	Update(ctx context.Context, spot *domain.Spot) (*domain.Spot, error)
	UpdateStatus(ctx context.Context, id int64, status domain.SpotStatus, changed time.Time) error
	Delete(ctx context.Context, id int64) error
	DeleteByParkingLotID(ctx context.Context, parkingLotID int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	ExistsByLotAndNumber(ctx context.Context, parkingLotID int64, number int) (bool, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	FindByID(ctx context.Context, id int64) (*domain.Reservation, error)
	FindAll(ctx context.Context) ([]domain.Reservation, error)
	FindByVehicleID(ctx context.Context, vehicleID int64) ([]domain.Reservation, error)
	FindBySpotID(ctx context.Context, spotID int64) ([]domain.Reservation, error)
	Update(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	Delete(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)
	// ExistsActiveOverlapping reports whether an ACTIVE reservation on the
	// spot overlaps the half-open window [start, end). excludeID > 0 leaves
	// that reservation out of the check (updates exclude themselves).
	ExistsActiveOverlapping(ctx context.Context, spotID int64, start, end time.Time, excludeID int64) (bool, error)
	ExistsByVehicleID(ctx context.Context, vehicleID int64) (bool, error)
	ExistsBySpotID(ctx context.Context, spotID int64) (bool, error)
	// ExpireOutdated transitions every ACTIVE reservation whose end time is
	// at or before now to EXPIRED and returns how many rows changed.
	ExpireOutdated(ctx context.Context, now time.Time) (int64, error)
}

type ParkingSessionRepository interface {
	Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	FindByID(ctx context.Context, id int64) (*domain.ParkingSession, error)
	FindAll(ctx context.Context) ([]domain.ParkingSession, error)
	FindBySpotID(ctx context.Context, spotID int64) ([]domain.ParkingSession, error)
	FindByVehicleID(ctx context.Context, vehicleID int64) ([]domain.ParkingSession, error)
	Update(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	Delete(ctx context.Context, id int64) error
	ExistsActiveBySpotID(ctx context.Context, spotID int64) (bool, error)
	ExistsActiveByVehicleID(ctx context.Context, vehicleID int64) (bool, error)
	ExistsByReservationID(ctx context.Context, reservationID int64) (bool, error)
	ExistsByVehicleID(ctx context.Context, vehicleID int64) (bool, error)
	ExistsBySpotID(ctx context.Context, spotID int64) (bool, error)
}
