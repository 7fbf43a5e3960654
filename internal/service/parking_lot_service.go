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

var ErrAddressTaken = fmt.Errorf("%w: a parking lot already exists at this address", ErrConflict)

type ParkingLotService struct {
	lotRepo         repository.ParkingLotRepository
	spotRepo        repository.SpotRepository
	tariffRepo      repository.TariffRepository
	reservationRepo repository.ReservationRepository
	sessionRepo     repository.ParkingSessionRepository
	txManager       repository.TxManager
	logger          *zap.Logger
	now             func() time.Time
}

func NewParkingLotService(
	lotRepo repository.ParkingLotRepository,
	spotRepo repository.SpotRepository,
	tariffRepo repository.TariffRepository,
	reservationRepo repository.ReservationRepository,
	sessionRepo repository.ParkingSessionRepository,
	txManager repository.TxManager,
	logger *zap.Logger,
) *ParkingLotService {
	return &ParkingLotService{
		lotRepo:         lotRepo,
		spotRepo:        spotRepo,
		tariffRepo:      tariffRepo,
		reservationRepo: reservationRepo,
		sessionRepo:     sessionRepo,
		txManager:       txManager,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *ParkingLotService) Create(ctx context.Context, dto domain.ParkingLotCreateUpdateDTO) (*domain.ParkingLot, error) {
	taken, err := s.lotRepo.ExistsByAddress(ctx, dto.Address, 0)
	if err != nil {
		return nil, fmt.Errorf("checking address: %w", err)
	}
	if taken {
		return nil, ErrAddressTaken
	}

	var lot *domain.ParkingLot
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.activateTariff(ctx, dto.TariffID); err != nil {
			return err
		}
		now := s.now().UTC()
		lot, err = s.lotRepo.Create(ctx, &domain.ParkingLot{
			Name:     dto.Name,
			Address:  dto.Address,
			Status:   domain.LotOpen,
			TariffID: dto.TariffID,
			Created:  now,
			Changed:  now,
		})
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return ErrAddressTaken
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("parking lot created", zap.Int64("parking_lot_id", lot.ID), zap.String("address", lot.Address))
	return lot, nil
}

func (s *ParkingLotService) GetByID(ctx context.Context, id int64) (*domain.ParkingLot, error) {
	return s.lotRepo.FindByID(ctx, id)
}

func (s *ParkingLotService) GetAll(ctx context.Context) ([]domain.ParkingLot, error) {
	return s.lotRepo.FindAll(ctx)
}

func (s *ParkingLotService) Update(ctx context.Context, id int64, dto domain.ParkingLotCreateUpdateDTO) (*domain.ParkingLot, error) {
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.lotRepo.ExistsByAddress(ctx, dto.Address, id)
	if err != nil {
		return nil, fmt.Errorf("checking address: %w", err)
	}
	if taken {
		return nil, ErrAddressTaken
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if dto.TariffID != lot.TariffID {
			if err := s.activateTariff(ctx, dto.TariffID); err != nil {
				return err
			}
		}
		lot.Name = dto.Name
		lot.Address = dto.Address
		lot.TariffID = dto.TariffID
		lot.Changed = s.now().UTC()
		lot, err = s.lotRepo.Update(ctx, lot)
		return err
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *ParkingLotService) ChangeStatus(ctx context.Context, id int64, status domain.ParkingLotStatus) (*domain.ParkingLot, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown parking lot status %q", ErrInvalidArgument, status)
	}
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.Status = status
	lot.Changed = s.now().UTC()
	return s.lotRepo.Update(ctx, lot)
}

// Delete removes the lot and its spots in one unit of work. Spots that still
// carry reservations or parking sessions block the delete.
func (s *ParkingLotService) Delete(ctx context.Context, id int64) error {
	spots, err := s.spotRepo.FindByParkingLotID(ctx, id)
	if err != nil {
		return err
	}
	for _, spot := range spots {
		inUse, err := s.spotInUse(ctx, spot.ID)
		if err != nil {
			return err
		}
		if inUse {
			return ErrSpotInUse
		}
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.spotRepo.DeleteByParkingLotID(ctx, id); err != nil {
			return err
		}
		return s.lotRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("parking lot deleted", zap.Int64("parking_lot_id", id), zap.Int("spots_removed", len(spots)))
	return nil
}

// activateTariff verifies the tariff exists and flips it to ACTIVE when a lot
// attaches it for the first time.
func (s *ParkingLotService) activateTariff(ctx context.Context, tariffID int64) error {
	tariff, err := s.tariffRepo.FindByID(ctx, tariffID)
	if err != nil {
		return err
	}
	if tariff.Status == domain.TariffInactive {
		tariff.Status = domain.TariffActive
		tariff.Changed = s.now().UTC()
		if _, err := s.tariffRepo.Update(ctx, tariff); err != nil {
			return err
		}
	}
	return nil
}

func (s *ParkingLotService) spotInUse(ctx context.Context, spotID int64) (bool, error) {
	hasReservations, err := s.reservationRepo.ExistsBySpotID(ctx, spotID)
	if err != nil {
		return false, fmt.Errorf("checking reservations: %w", err)
	}
	if hasReservations {
		return true, nil
	}
	hasSessions, err := s.sessionRepo.ExistsBySpotID(ctx, spotID)
	if err != nil {
		return false, fmt.Errorf("checking parking sessions: %w", err)
	}
	return hasSessions, nil
}
