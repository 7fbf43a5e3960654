package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type ParkingSessionService struct {
	sessionRepo     repository.ParkingSessionRepository
	reservationRepo repository.ReservationRepository
	spotRepo        repository.SpotRepository
	vehicleRepo     repository.VehicleRepository
	userRepo        repository.UserRepository
	lotRepo         repository.ParkingLotRepository
	tariffRepo      repository.TariffRepository
	txManager       repository.TxManager
	notifier        SpotNotifier
	logger          *zap.Logger
	now             func() time.Time
}

func NewParkingSessionService(
	sessionRepo repository.ParkingSessionRepository,
	reservationRepo repository.ReservationRepository,
	spotRepo repository.SpotRepository,
	vehicleRepo repository.VehicleRepository,
	userRepo repository.UserRepository,
	lotRepo repository.ParkingLotRepository,
	tariffRepo repository.TariffRepository,
	txManager repository.TxManager,
	notifier SpotNotifier,
	logger *zap.Logger,
) *ParkingSessionService {
	return &ParkingSessionService{
		sessionRepo:     sessionRepo,
		reservationRepo: reservationRepo,
		spotRepo:        spotRepo,
		vehicleRepo:     vehicleRepo,
		userRepo:        userRepo,
		lotRepo:         lotRepo,
		tariffRepo:      tariffRepo,
		txManager:       txManager,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// Create starts a session, either directly on an available spot or by
// consuming an existing reservation when dto.ReservationID is set.
func (s *ParkingSessionService) Create(ctx context.Context, p domain.Principal, dto domain.ParkingSessionCreateDTO) (*domain.ParkingSession, error) {
	if _, err := s.reservationRepo.ExpireOutdated(ctx, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("expiring reservations: %w", err)
	}
	if dto.ReservationID != nil {
		return s.createFromReservation(ctx, p, dto)
	}
	return s.createDirect(ctx, p, dto)
}

func (s *ParkingSessionService) createDirect(ctx context.Context, p domain.Principal, dto domain.ParkingSessionCreateDTO) (*domain.ParkingSession, error) {
	var (
		session *domain.ParkingSession
		spot    *domain.Spot
	)
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
		spot, err = s.spotRepo.FindByIDForUpdate(ctx, dto.SpotID)
		if err != nil {
			return err
		}
		if spot.Status != domain.SpotAvailable {
			return ErrSpotNotAvailable
		}
		if err := s.assertNoActiveSession(ctx, dto.SpotID, dto.VehicleID); err != nil {
			return err
		}
		if err := CheckEligibility(user, vehicle, spot); err != nil {
			return err
		}
		// A spot reserved for this instant belongs to the reservation's own
		// vehicle; a walk-in may not take it.
		now := s.now().UTC()
		reservations, err := s.reservationRepo.FindBySpotID(ctx, dto.SpotID)
		if err != nil {
			return err
		}
		for _, r := range reservations {
			if r.Status == domain.ReservationActive && domain.Contains(r.StartTime, r.EndTime, now) {
				return ErrReservationHoldsSpot
			}
		}

		session, err = s.startSession(ctx, spot, dto.VehicleID, null.Int{}, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifySpotStatus(spot)
	s.logger.Info("parking session started",
		zap.Int64("session_id", session.ID),
		zap.Int64("spot_id", session.SpotID),
		zap.Int64("vehicle_id", session.VehicleID))
	return session, nil
}

func (s *ParkingSessionService) createFromReservation(ctx context.Context, p domain.Principal, dto domain.ParkingSessionCreateDTO) (*domain.ParkingSession, error) {
	var (
		session *domain.ParkingSession
		spot    *domain.Spot
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		reservation, err := s.reservationRepo.FindByID(ctx, *dto.ReservationID)
		if err != nil {
			return err
		}
		if reservation.Status != domain.ReservationActive {
			return ErrReservationNotActive
		}
		consumed, err := s.sessionRepo.ExistsByReservationID(ctx, reservation.ID)
		if err != nil {
			return fmt.Errorf("checking sessions: %w", err)
		}
		if consumed {
			return ErrReservationInUse
		}
		if dto.VehicleID != reservation.VehicleID || dto.SpotID != reservation.SpotID {
			return ErrReservationMismatch
		}
		vehicle, err := s.vehicleRepo.FindByID(ctx, reservation.VehicleID)
		if err != nil {
			return err
		}
		if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
			return err
		}
		now := s.now().UTC()
		if !domain.Contains(reservation.StartTime, reservation.EndTime, now) {
			return ErrOutsideWindow
		}
		spot, err = s.spotRepo.FindByIDForUpdate(ctx, reservation.SpotID)
		if err != nil {
			return err
		}
		if spot.Status != domain.SpotAvailable {
			return ErrSpotNotAvailable
		}
		if err := s.assertNoActiveSession(ctx, reservation.SpotID, reservation.VehicleID); err != nil {
			return err
		}
		// Eligibility was established at booking time and is not re-checked.

		session, err = s.startSession(ctx, spot, reservation.VehicleID, null.IntFrom(reservation.ID), now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifySpotStatus(spot)
	s.logger.Info("parking session started from reservation",
		zap.Int64("session_id", session.ID),
		zap.Int64("reservation_id", session.ReservationID.Int64),
		zap.Int64("spot_id", session.SpotID))
	return session, nil
}

// startSession flips the spot to OCCUPIED and persists the ACTIVE session.
// Callers hold the spot lock and have passed every invariant check.
func (s *ParkingSessionService) startSession(ctx context.Context, spot *domain.Spot, vehicleID int64, reservationID null.Int, now time.Time) (*domain.ParkingSession, error) {
	if err := s.spotRepo.UpdateStatus(ctx, spot.ID, domain.SpotOccupied, now); err != nil {
		return nil, err
	}
	spot.Status = domain.SpotOccupied
	spot.Changed = now
	return s.sessionRepo.Create(ctx, &domain.ParkingSession{
		VehicleID:     vehicleID,
		SpotID:        spot.ID,
		StartTime:     now,
		Status:        domain.SessionActive,
		ReservationID: reservationID,
		Created:       now,
		Changed:       now,
	})
}

func (s *ParkingSessionService) assertNoActiveSession(ctx context.Context, spotID, vehicleID int64) error {
	spotBusy, err := s.sessionRepo.ExistsActiveBySpotID(ctx, spotID)
	if err != nil {
		return fmt.Errorf("checking spot sessions: %w", err)
	}
	if spotBusy {
		return ErrSpotSessionConflict
	}
	vehicleBusy, err := s.sessionRepo.ExistsActiveByVehicleID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("checking vehicle sessions: %w", err)
	}
	if vehicleBusy {
		return ErrVehicleSessionConflict
	}
	return nil
}

// Finish closes the session: FINISHED with end=now, cost computed from the
// lot tariff, spot freed and the backing reservation (if any) expired, all in
// one unit of work.
func (s *ParkingSessionService) Finish(ctx context.Context, p domain.Principal, id int64) (*domain.ParkingSession, error) {
	var (
		session *domain.ParkingSession
		spot    *domain.Spot
	)
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		session, err = s.sessionRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		vehicle, err := s.vehicleRepo.FindByID(ctx, session.VehicleID)
		if err != nil {
			return err
		}
		if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
			return err
		}
		if session.Status == domain.SessionFinished {
			return ErrSessionFinished
		}
		spot, err = s.spotRepo.FindByIDForUpdate(ctx, session.SpotID)
		if err != nil {
			return err
		}
		lot, err := s.lotRepo.FindByID(ctx, spot.ParkingLotID)
		if err != nil {
			return err
		}
		tariff, err := s.tariffRepo.FindByID(ctx, lot.TariffID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		session.Status = domain.SessionFinished
		session.EndTime = null.TimeFrom(now)
		session.TotalCost = null.FloatFrom(ComputeCost(tariff, session.StartTime, now))
		session.Changed = now
		session, err = s.sessionRepo.Update(ctx, session)
		if err != nil {
			return err
		}
		if err := s.spotRepo.UpdateStatus(ctx, spot.ID, domain.SpotAvailable, now); err != nil {
			return err
		}
		spot.Status = domain.SpotAvailable
		spot.Changed = now

		// The reservation's window is consumed regardless of remaining time.
		if session.ReservationID.Valid {
			reservation, err := s.reservationRepo.FindByID(ctx, session.ReservationID.Int64)
			if err != nil {
				return err
			}
			if reservation.Status == domain.ReservationActive {
				reservation.Status = domain.ReservationExpired
				reservation.Changed = now
				if _, err := s.reservationRepo.Update(ctx, reservation); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.NotifySpotStatus(spot)
	s.logger.Info("parking session finished",
		zap.Int64("session_id", session.ID),
		zap.Int64("spot_id", session.SpotID),
		zap.Float64("total_cost", session.TotalCost.Float64))
	return session, nil
}

func (s *ParkingSessionService) GetByID(ctx context.Context, p domain.Principal, id int64) (*domain.ParkingSession, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, session.VehicleID)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ParkingSessionService) GetAll(ctx context.Context) ([]domain.ParkingSession, error) {
	return s.sessionRepo.FindAll(ctx)
}

func (s *ParkingSessionService) GetBySpotID(ctx context.Context, spotID int64) ([]domain.ParkingSession, error) {
	return s.sessionRepo.FindBySpotID(ctx, spotID)
}

func (s *ParkingSessionService) GetByVehicleID(ctx context.Context, p domain.Principal, vehicleID int64) ([]domain.ParkingSession, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return nil, err
	}
	return s.sessionRepo.FindByVehicleID(ctx, vehicleID)
}

// Delete hard-deletes a finished session. An ACTIVE session must be finished
// first.
func (s *ParkingSessionService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, session.VehicleID)
	if err != nil {
		return err
	}
	if err := assertOwnerOrAdmin(p, vehicle.UserID); err != nil {
		return err
	}
	if session.Status == domain.SessionActive {
		return ErrSessionStillActive
	}
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("parking session deleted", zap.Int64("session_id", id))
	return nil
}
