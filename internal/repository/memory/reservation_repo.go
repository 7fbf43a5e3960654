package memory

import (
	"context"
	"sort"
	"time"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type reservationRepository struct {
	store *Store
}

func NewReservationRepository(store *Store) repository.ReservationRepository {
	return &reservationRepository{store: store}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	defer r.store.lock(ctx)()

	reservation.ID = r.store.nextID()
	r.store.reservations[reservation.ID] = *reservation
	return reservation, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	defer r.store.lock(ctx)()

	reservation, ok := r.store.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &reservation, nil
}

func (r *reservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	defer r.store.lock(ctx)()

	reservations := make([]domain.Reservation, 0, len(r.store.reservations))
	for _, res := range r.store.reservations {
		reservations = append(reservations, res)
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

func (r *reservationRepository) FindByVehicleID(ctx context.Context, vehicleID int64) ([]domain.Reservation, error) {
	defer r.store.lock(ctx)()

	reservations := make([]domain.Reservation, 0)
	for _, res := range r.store.reservations {
		if res.VehicleID == vehicleID {
			reservations = append(reservations, res)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

func (r *reservationRepository) FindBySpotID(ctx context.Context, spotID int64) ([]domain.Reservation, error) {
	defer r.store.lock(ctx)()

	reservations := make([]domain.Reservation, 0)
	for _, res := range r.store.reservations {
		if res.SpotID == spotID {
			reservations = append(reservations, res)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

func (r *reservationRepository) Update(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.reservations[reservation.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	r.store.reservations[reservation.ID] = *reservation
	return reservation, nil
}

func (r *reservationRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.reservations, id)
	return nil
}

func (r *reservationRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	defer r.store.lock(ctx)()

	_, ok := r.store.reservations[id]
	return ok, nil
}

func (r *reservationRepository) ExistsActiveOverlapping(ctx context.Context, spotID int64, start, end time.Time, excludeID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, res := range r.store.reservations {
		if res.ID == excludeID || res.SpotID != spotID || res.Status != domain.ReservationActive {
			continue
		}
		if domain.Overlaps(res.StartTime, res.EndTime, start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *reservationRepository) ExistsByVehicleID(ctx context.Context, vehicleID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, res := range r.store.reservations {
		if res.VehicleID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *reservationRepository) ExistsBySpotID(ctx context.Context, spotID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, res := range r.store.reservations {
		if res.SpotID == spotID {
			return true, nil
		}
	}
	return false, nil
}

func (r *reservationRepository) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	defer r.store.lock(ctx)()

	var expired int64
	for id, res := range r.store.reservations {
		if res.Status == domain.ReservationActive && !res.EndTime.After(now) {
			res.Status = domain.ReservationExpired
			res.Changed = now
			r.store.reservations[id] = res
			expired++
		}
	}
	return expired, nil
}
