package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type ReservationService struct {
	reservationRepo repository.ReservationRepository
	sessionRepo     repository.ParkingSessionRepository
	spotRepo        repository.SpotRepository
	vehicleRepo     repository.VehicleRepository
	userRepo        repository.UserRepository
	txManager       repository.TxManager
	logger          *zap.Logger
	now             func() time.Time
}

func NewReservationService(
	reservationRepo repository.ReservationRepository,
	sessionRepo repository.ParkingSessionRepository,
	spotRepo repository.SpotRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	txManager repository.TxManager,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		sessionRepo:     sessionRepo,
		spotRepo:        spotRepo,
		vehicleRepo:     vehicleRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		logger:          logger,
		now:             time.Now,
	}
}

// ExpireOutdated sweeps every ACTIVE reservation whose window has closed to
// EXPIRED. It runs at the top of every reservation operation and from the
// background ticker in main, so an outdated reservation is never visible as
// ACTIVE for longer than one sweep interval.
func (s *ReservationService) ExpireOutdated(ctx context.Context) (int64, error) {
	expired, err := s.reservationRepo.ExpireOutdated(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("expiring reservations: %w", err)
	}
	if expired > 0 {
		s.logger.Info("reservations expired", zap.Int64("count", expired))
	}
	return expired, nil
}

func (s *ReservationService) Create(ctx context.Context, p domain.Principal, dto domain.ReservationCreateDTO) (*domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}
	if !dto.EndTime.After(dto.StartTime) {
		return nil, ErrInvalidInterval
	}

	var reservation *domain.Reservation
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		vehicle, err := s.vehicleRepo.FindByID(ctx, dto.VehicleID)
		if err != nil {
			return err
		}
		if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
			return err
		}
		user, err := s.userRepo.FindByID(ctx, vehicle.UserID)
		if err != nil {
			return err
		}
		// Lock the spot row so the overlap check and the insert are one
		// serialized step per spot.
		spot, err := s.spotRepo.FindByIDForUpdate(ctx, dto.SpotID)
		if err != nil {
			return err
		}
		if spot.Status != domain.SpotAvailable {
			return ErrSpotNotAvailable
		}
		if err := CheckEligibility(user, vehicle, spot); err != nil {
			return err
		}
		overlapping, err := s.reservationRepo.ExistsActiveOverlapping(ctx, dto.SpotID, dto.StartTime, dto.EndTime, 0)
		if err != nil {
			return fmt.Errorf("checking overlap: %w", err)
		}
		if overlapping {
			return ErrTimeOverlap
		}

		now := s.now().UTC()
		reservation, err = s.reservationRepo.Create(ctx, &domain.Reservation{
			VehicleID: dto.VehicleID,
			SpotID:    dto.SpotID,
			StartTime: dto.StartTime.UTC(),
			EndTime:   dto.EndTime.UTC(),
			Status:    domain.ReservationActive,
			Created:   now,
			Changed:   now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation created",
		zap.Int64("reservation_id", reservation.ID),
		zap.Int64("spot_id", reservation.SpotID),
		zap.Int64("vehicle_id", reservation.VehicleID),
		zap.Time("start_time", reservation.StartTime),
		zap.Time("end_time", reservation.EndTime))
	return reservation, nil
}

func (s *ReservationService) GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, reservation.VehicleID)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return nil, err
	}
	return reservation, nil
}

func (s *ReservationService) GetAll(ctx context.Context) ([]domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}
	return s.reservationRepo.FindAll(ctx)
}

func (s *ReservationService) GetByVehicleID(ctx context.Context, p domain.Principal, vehicleID int64) ([]domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return nil, err
	}
	return s.reservationRepo.FindByVehicleID(ctx, vehicleID)
}

func (s *ReservationService) GetBySpotID(ctx context.Context, spotID int64) ([]domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}
	return s.reservationRepo.FindBySpotID(ctx, spotID)
}

// Update extends or shortens the reservation window by moving its end time.
// Allowed only while ACTIVE and not yet consumed by a session.
func (s *ReservationService) Update(ctx context.Context, p domain.Principal, id int64, dto domain.ReservationUpdateDTO) (*domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}

	var reservation *domain.Reservation
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.reservationRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		vehicle, err := s.vehicleRepo.FindByID(ctx, reservation.VehicleID)
		if err != nil {
			return err
		}
		if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
			return err
		}
		if reservation.Status != domain.ReservationActive {
			return ErrReservationNotActive
		}
		used, err := s.sessionRepo.ExistsByReservationID(ctx, id)
		if err != nil {
			return fmt.Errorf("checking sessions: %w", err)
		}
		if used {
			return ErrReservationInUse
		}
		if !dto.EndTime.After(reservation.StartTime) {
			return ErrInvalidInterval
		}
		overlapping, err := s.reservationRepo.ExistsActiveOverlapping(ctx, reservation.SpotID, reservation.StartTime, dto.EndTime, id)
		if err != nil {
			return fmt.Errorf("checking overlap: %w", err)
		}
		if overlapping {
			return ErrTimeOverlap
		}

		reservation.EndTime = dto.EndTime.UTC()
		reservation.Changed = s.now().UTC()
		reservation, err = s.reservationRepo.Update(ctx, reservation)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation updated",
		zap.Int64("reservation_id", reservation.ID),
		zap.Time("end_time", reservation.EndTime))
	return reservation, nil
}

// Cancel is idempotent on an already CANCELLED reservation. An EXPIRED or
// session-backed reservation cannot be cancelled.
func (s *ReservationService) Cancel(ctx context.Context, p domain.Principal, id int64) (*domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}

	var reservation *domain.Reservation
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.reservationRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		vehicle, err := s.vehicleRepo.FindByID(ctx, reservation.VehicleID)
		if err != nil {
			return err
		}
		if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
			return err
		}
		if reservation.Status == domain.ReservationCancelled {
			return nil
		}
		if reservation.Status == domain.ReservationExpired {
			return ErrCannotCancelExpired
		}
		used, err := s.sessionRepo.ExistsByReservationID(ctx, id)
		if err != nil {
			return fmt.Errorf("checking sessions: %w", err)
		}
		if used {
			return ErrReservationInUse
		}

		reservation.Status = domain.ReservationCancelled
		reservation.Changed = s.now().UTC()
		reservation, err = s.reservationRepo.Update(ctx, reservation)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation cancelled", zap.Int64("reservation_id", reservation.ID))
	return reservation, nil
}

// ChangeStatus is the admin override that sets the status directly, without
// the cancel-path transition rules.
func (s *ReservationService) ChangeStatus(ctx context.Context, id int64, status domain.ReservationStatus) (*domain.Reservation, error) {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown reservation status %q", ErrInvalidArgument, status)
	}
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reservation.Status = status
	reservation.Changed = s.now().UTC()
	updated, err := s.reservationRepo.Update(ctx, reservation)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation status overridden",
		zap.Int64("reservation_id", id),
		zap.String("status", string(status)))
	return updated, nil
}

func (s *ReservationService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if _, err := s.ExpireOutdated(ctx); err != nil {
		return err
	}
	reservation, err := s.reservationRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, reservation.VehicleID)
	if err != nil {
		return err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return err
	}
	used, err := s.sessionRepo.ExistsByReservationID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking sessions: %w", err)
	}
	if used {
		return ErrReservationInUse
	}
	if err := s.reservationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("reservation deleted", zap.Int64("reservation_id", id))
	return nil
}
