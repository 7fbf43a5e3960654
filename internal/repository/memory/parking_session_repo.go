package memory

import (
	"context"
	"sort"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type parkingSessionRepository struct {
	store *Store
}

func NewParkingSessionRepository(store *Store) repository.ParkingSessionRepository {
	return &parkingSessionRepository{store: store}
}

func (r *parkingSessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	defer r.store.lock(ctx)()

	if session.ReservationID.Valid {
		for _, s := range r.store.sessions {
			if s.ReservationID.Valid && s.ReservationID.Int64 == session.ReservationID.Int64 {
				return nil, repository.ErrDuplicateEntry
			}
		}
	}
	session.ID = r.store.nextID()
	r.store.sessions[session.ID] = *session
	return session, nil
}

func (r *parkingSessionRepository) FindByID(ctx context.Context, id int64) (*domain.ParkingSession, error) {
	defer r.store.lock(ctx)()

	session, ok := r.store.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *parkingSessionRepository) FindAll(ctx context.Context) ([]domain.ParkingSession, error) {
	defer r.store.lock(ctx)()

	sessions := make([]domain.ParkingSession, 0, len(r.store.sessions))
	for _, s := range r.store.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (r *parkingSessionRepository) FindBySpotID(ctx context.Context, spotID int64) ([]domain.ParkingSession, error) {
	defer r.store.lock(ctx)()

	sessions := make([]domain.ParkingSession, 0)
	for _, s := range r.store.sessions {
		if s.SpotID == spotID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (r *parkingSessionRepository) FindByVehicleID(ctx context.Context, vehicleID int64) ([]domain.ParkingSession, error) {
	defer r.store.lock(ctx)()

	sessions := make([]domain.ParkingSession, 0)
	for _, s := range r.store.sessions {
		if s.VehicleID == vehicleID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (r *parkingSessionRepository) Update(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.sessions[session.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	r.store.sessions[session.ID] = *session
	return session, nil
}

func (r *parkingSessionRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.sessions, id)
	return nil
}

func (r *parkingSessionRepository) ExistsActiveBySpotID(ctx context.Context, spotID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, s := range r.store.sessions {
		if s.SpotID == spotID && s.Status == domain.SessionActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *parkingSessionRepository) ExistsActiveByVehicleID(ctx context.Context, vehicleID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, s := range r.store.sessions {
		if s.VehicleID == vehicleID && s.Status == domain.SessionActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *parkingSessionRepository) ExistsByReservationID(ctx context.Context, reservationID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, s := range r.store.sessions {
		if s.ReservationID.Valid && s.ReservationID.Int64 == reservationID {
			return true, nil
		}
	}
	return false, nil
}

func (r *parkingSessionRepository) ExistsByVehicleID(ctx context.Context, vehicleID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, s := range r.store.sessions {
		if s.VehicleID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *parkingSessionRepository) ExistsBySpotID(ctx context.Context, spotID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, s := range r.store.sessions {
		if s.SpotID == spotID {
			return true, nil
		}
	}
	return false, nil
}
