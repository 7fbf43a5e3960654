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

var ErrTariffNameTaken = fmt.Errorf("%w: tariff name already exists", ErrConflict)

type TariffService struct {
	tariffRepo repository.TariffRepository
	lotRepo    repository.ParkingLotRepository
	logger     *zap.Logger
	now        func() time.Time
}

func NewTariffService(
	tariffRepo repository.TariffRepository,
	lotRepo repository.ParkingLotRepository,
	logger *zap.Logger,
) *TariffService {
	return &TariffService{
		tariffRepo: tariffRepo,
		lotRepo:    lotRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// Create persists a new tariff as INACTIVE; it activates when a parking lot
// first attaches it.
func (s *TariffService) Create(ctx context.Context, dto domain.TariffCreateUpdateDTO) (*domain.Tariff, error) {
	taken, err := s.tariffRepo.ExistsByName(ctx, dto.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("checking tariff name: %w", err)
	}
	if taken {
		return nil, ErrTariffNameTaken
	}

	now := s.now().UTC()
	tariff, err := s.tariffRepo.Create(ctx, &domain.Tariff{
		Name:               dto.Name,
		HourPrice:          dto.HourPrice,
		BillingStepMinutes: dto.BillingStepMinutes,
		FreeMinutes:        dto.FreeMinutes,
		Status:             domain.TariffInactive,
		Created:            now,
		Changed:            now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrTariffNameTaken
		}
		return nil, err
	}
	s.logger.Info("tariff created", zap.Int64("tariff_id", tariff.ID), zap.String("name", tariff.Name))
	return tariff, nil
}

func (s *TariffService) GetByID(ctx context.Context, id int64) (*domain.Tariff, error) {
	return s.tariffRepo.FindByID(ctx, id)
}

func (s *TariffService) GetAll(ctx context.Context) ([]domain.Tariff, error) {
	return s.tariffRepo.FindAll(ctx)
}

func (s *TariffService) Update(ctx context.Context, id int64, dto domain.TariffCreateUpdateDTO) (*domain.Tariff, error) {
	tariff, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.tariffRepo.ExistsByName(ctx, dto.Name, id)
	if err != nil {
		return nil, fmt.Errorf("checking tariff name: %w", err)
	}
	if taken {
		return nil, ErrTariffNameTaken
	}

	tariff.Name = dto.Name
	tariff.HourPrice = dto.HourPrice
	tariff.BillingStepMinutes = dto.BillingStepMinutes
	tariff.FreeMinutes = dto.FreeMinutes
	tariff.Changed = s.now().UTC()
	return s.tariffRepo.Update(ctx, tariff)
}

func (s *TariffService) ChangeStatus(ctx context.Context, id int64, status domain.TariffStatus) (*domain.Tariff, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown tariff status %q", ErrInvalidArgument, status)
	}
	tariff, err := s.tariffRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == domain.TariffInactive {
		attached, err := s.lotRepo.ExistsByTariffID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking parking lots: %w", err)
		}
		if attached {
			return nil, ErrTariffInUse
		}
	}
	tariff.Status = status
	tariff.Changed = s.now().UTC()
	return s.tariffRepo.Update(ctx, tariff)
}

func (s *TariffService) Delete(ctx context.Context, id int64) error {
	attached, err := s.lotRepo.ExistsByTariffID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking parking lots: %w", err)
	}
	if attached {
		return ErrTariffInUse
	}
	if err := s.tariffRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tariff deleted", zap.Int64("tariff_id", id))
	return nil
}
