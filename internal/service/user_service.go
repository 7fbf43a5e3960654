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

type UserService struct {
	userRepo    repository.UserRepository
	vehicleRepo repository.VehicleRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewUserService(
	userRepo repository.UserRepository,
	vehicleRepo repository.VehicleRepository,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		vehicleRepo: vehicleRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *UserService) Create(ctx context.Context, dto domain.UserCreateUpdateDTO) (*domain.User, error) {
	taken, err := s.userRepo.ExistsByEmail(ctx, dto.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	now := s.now().UTC()
	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:          dto.Email,
		Status:         domain.UserActive,
		DisabledPermit: dto.DisabledPermit,
		Created:        now,
		Changed:        now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("user created", zap.Int64("user_id", user.ID))
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.User, error) {
	if err := assertOwnerOrAdmin(p, id); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, id)
}

func (s *UserService) GetAll(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.FindAll(ctx)
}

func (s *UserService) Update(ctx context.Context, p domain.Principal, id int64, dto domain.UserCreateUpdateDTO) (*domain.User, error) {
	if err := assertOwnerOrAdmin(p, id); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.userRepo.ExistsByEmail(ctx, dto.Email, id)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user.Email = dto.Email
	user.DisabledPermit = dto.DisabledPermit
	user.Changed = s.now().UTC()
	return s.userRepo.Update(ctx, user)
}

// ChangeStatus blocks or reactivates a user. Admin only; a BLOCKED user
// fails every eligibility check until reactivated.
func (s *UserService) ChangeStatus(ctx context.Context, id int64, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown user status %q", ErrInvalidArgument, status)
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Status = status
	user.Changed = s.now().UTC()
	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user status changed",
		zap.Int64("user_id", id),
		zap.String("status", string(status)))
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	ownsVehicles, err := s.vehicleRepo.ExistsByUserID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking vehicles: %w", err)
	}
	if ownsVehicles {
		return ErrUserInUse
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", zap.Int64("user_id", id))
	return nil
}
