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

var ErrSpotNumberTaken = fmt.Errorf("%w: spot number already exists in this parking lot", ErrConflict)

type SpotService struct {
	spotRepo        repository.SpotRepository
	lotRepo         repository.ParkingLotRepository
	reservationRepo repository.ReservationRepository
	sessionRepo     repository.ParkingSessionRepository
	notifier        SpotNotifier
	logger          *zap.Logger
	now             func() time.Time
}

func NewSpotService(
	spotRepo repository.SpotRepository,
	lotRepo repository.ParkingLotRepository,
	reservationRepo repository.ReservationRepository,
	sessionRepo repository.ParkingSessionRepository,
	notifier SpotNotifier,
	logger *zap.Logger,
) *SpotService {
	return &SpotService{
		spotRepo:        spotRepo,
		lotRepo:         lotRepo,
		reservationRepo: reservationRepo,
		sessionRepo:     sessionRepo,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *SpotService) Create(ctx context.Context, dto domain.SpotCreateDTO) (*domain.Spot, error) {
	if !dto.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown spot type %q", ErrInvalidArgument, dto.Type)
	}
	if _, err := s.lotRepo.FindByID(ctx, dto.ParkingLotID); err != nil {
		return nil, err
	}
	taken, err := s.spotRepo.ExistsByLotAndNumber(ctx, dto.ParkingLotID, dto.Number)
	if err != nil {
		return nil, fmt.Errorf("checking spot number: %w", err)
	}
	if taken {
		return nil, ErrSpotNumberTaken
	}

	now := s.now().UTC()
	spot, err := s.spotRepo.Create(ctx, &domain.Spot{
		Number:       dto.Number,
		Type:         dto.Type,
		Status:       domain.SpotAvailable,
		ParkingLotID: dto.ParkingLotID,
		Level:        dto.Level,
		Created:      now,
		Changed:      now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrSpotNumberTaken
		}
		return nil, err
	}
	s.logger.Info("spot created",
		zap.Int64("spot_id", spot.ID),
		zap.Int64("parking_lot_id", spot.ParkingLotID),
		zap.Int("number", spot.Number))
	return spot, nil
}

func (s *SpotService) GetByID(ctx context.Context, id int64) (*domain.Spot, error) {
	return s.spotRepo.FindByID(ctx, id)
}

func (s *SpotService) GetAll(ctx context.Context) ([]domain.Spot, error) {
	return s.spotRepo.FindAll(ctx)
}

func (s *SpotService) GetByParkingLotID(ctx context.Context, parkingLotID int64) ([]domain.Spot, error) {
	if _, err := s.lotRepo.FindByID(ctx, parkingLotID); err != nil {
		return nil, err
	}
	return s.spotRepo.FindByParkingLotID(ctx, parkingLotID)
}

func (s *SpotService) Update(ctx context.Context, id int64, dto domain.SpotUpdateDTO) (*domain.Spot, error) {
	if !dto.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown spot type %q", ErrInvalidArgument, dto.Type)
	}
	spot, err := s.spotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	spot.Type = dto.Type
	spot.Level = dto.Level
	spot.Changed = s.now().UTC()
	return s.spotRepo.Update(ctx, spot)
}

// ChangeStatus is the operator override for AVAILABLE/OUT_OF_SERVICE.
// OCCUPIED is a projection of the active session and only the session
// lifecycle may set or clear it.
func (s *SpotService) ChangeStatus(ctx context.Context, id int64, status domain.SpotStatus) (*domain.Spot, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown spot status %q", ErrInvalidArgument, status)
	}
	if status == domain.SpotOccupied {
		return nil, fmt.Errorf("%w: OCCUPIED is set by the session lifecycle only", ErrInvalidArgument)
	}
	spot, err := s.spotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if spot.Status == domain.SpotOccupied {
		return nil, ErrSpotSessionConflict
	}
	spot.Status = status
	spot.Changed = s.now().UTC()
	updated, err := s.spotRepo.Update(ctx, spot)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifySpotStatus(updated)
	s.logger.Info("spot status changed",
		zap.Int64("spot_id", id),
		zap.String("status", string(status)))
	return updated, nil
}

func (s *SpotService) Delete(ctx context.Context, id int64) error {
	if _, err := s.spotRepo.FindByID(ctx, id); err != nil {
		return err
	}
	hasReservations, err := s.reservationRepo.ExistsBySpotID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking reservations: %w", err)
	}
	hasSessions, err := s.sessionRepo.ExistsBySpotID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking parking sessions: %w", err)
	}
	if hasReservations || hasSessions {
		return ErrSpotInUse
	}
	if err := s.spotRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("spot deleted", zap.Int64("spot_id", id))
	return nil
}
