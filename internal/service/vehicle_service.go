package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

var ErrPlateNumberTaken = fmt.Errorf("%w: plate number already registered", ErrConflict)

type VehicleService struct {
	vehicleRepo     repository.VehicleRepository
	userRepo        repository.UserRepository
	reservationRepo repository.ReservationRepository
	sessionRepo     repository.ParkingSessionRepository
	logger          *zap.Logger
	now             func() time.Time
}

func NewVehicleService(
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	reservationRepo repository.ReservationRepository,
	sessionRepo repository.ParkingSessionRepository,
	logger *zap.Logger,
) *VehicleService {
	return &VehicleService{
		vehicleRepo:     vehicleRepo,
		userRepo:        userRepo,
		reservationRepo: reservationRepo,
		sessionRepo:     sessionRepo,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *VehicleService) Create(ctx context.Context, p domain.Principal, dto domain.VehicleCreateUpdateDTO) (*domain.Vehicle, error) {
	if err := assertOwnerOrAdmin(p, dto.UserID); err != nil {
		return nil, err
	}
	if !dto.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidArgument, dto.Type)
	}
	if _, err := s.userRepo.FindByID(ctx, dto.UserID); err != nil {
		return nil, err
	}
	taken, err := s.vehicleRepo.ExistsByPlateNumber(ctx, dto.PlateNumber, 0)
	if err != nil {
		return nil, fmt.Errorf("checking plate number: %w", err)
	}
	if taken {
		return nil, ErrPlateNumberTaken
	}

	now := s.now().UTC()
	vehicle, err := s.vehicleRepo.Create(ctx, &domain.Vehicle{
		PlateNumber: dto.PlateNumber,
		Type:        dto.Type,
		UserID:      dto.UserID,
		Created:     now,
		Changed:     now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrPlateNumberTaken
		}
		return nil, err
	}
	s.logger.Info("vehicle created",
		zap.Int64("vehicle_id", vehicle.ID),
		zap.Int64("user_id", vehicle.UserID),
		zap.String("plate_number", vehicle.PlateNumber))
	return vehicle, nil
}

func (s *VehicleService) GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) GetAll(ctx context.Context) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindAll(ctx)
}

func (s *VehicleService) GetByUserID(ctx context.Context, p domain.Principal, userID int64) ([]domain.Vehicle, error) {
	if err := assertOwnerOrAdmin(p, userID); err != nil {
		return nil, err
	}
	return s.vehicleRepo.FindByUserID(ctx, userID)
}

func (s *VehicleService) Update(ctx context.Context, p domain.Principal, id int64, dto domain.VehicleCreateUpdateDTO) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return nil, err
	}
	if !dto.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown vehicle type %q", ErrInvalidArgument, dto.Type)
	}
	// Reassigning the vehicle to another user is an admin operation.
	if dto.UserID != vehicle.UserID && !p.IsAdmin() {
		return nil, ErrNotOwner
	}
	if dto.UserID != vehicle.UserID {
		if _, err := s.userRepo.FindByID(ctx, dto.UserID); err != nil {
			return nil, err
		}
	}
	taken, err := s.vehicleRepo.ExistsByPlateNumber(ctx, dto.PlateNumber, id)
	if err != nil {
		return nil, fmt.Errorf("checking plate number: %w", err)
	}
	if taken {
		return nil, ErrPlateNumberTaken
	}

	vehicle.PlateNumber = dto.PlateNumber
	vehicle.Type = dto.Type
	vehicle.UserID = dto.UserID
	vehicle.Changed = s.now().UTC()
	return s.vehicleRepo.Update(ctx, vehicle)
}

func (s *VehicleService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return err
	}
	hasReservations, err := s.reservationRepo.ExistsByVehicleID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking reservations: %w", err)
	}
	hasSessions, err := s.sessionRepo.ExistsByVehicleID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking parking sessions: %w", err)
	}
	if hasReservations || hasSessions {
		return ErrVehicleInUse
	}
	if err := s.vehicleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("vehicle deleted", zap.Int64("vehicle_id", id))
	return nil
}
