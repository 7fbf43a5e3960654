package memory

import (
	"context"
	"sort"
	"time"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type spotRepository struct {
	store *Store
}

func NewSpotRepository(store *Store) repository.SpotRepository {
	return &spotRepository{store: store}
}

func (r *spotRepository) Create(ctx context.Context, spot *domain.Spot) (*domain.Spot, error) {
	defer r.store.lock(ctx)()

	for _, s := range r.store.spots {
		if s.ParkingLotID == spot.ParkingLotID && s.Number == spot.Number {
			return nil, repository.ErrDuplicateEntry
		}
	}
	spot.ID = r.store.nextID()
	r.store.spots[spot.ID] = *spot
	return spot, nil
}

func (r *spotRepository) FindByID(ctx context.Context, id int64) (*domain.Spot, error) {
	defer r.store.lock(ctx)()

	spot, ok := r.store.spots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &spot, nil
}

// FindByIDForUpdate is a plain read here: the unit of work already holds the
// store mutex, which serializes every concurrent check-then-act on the spot.
func (r *spotRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Spot, error) {
	return r.FindByID(ctx, id)
}

func (r *spotRepository) FindAll(ctx context.Context) ([]domain.Spot, error) {
	defer r.store.lock(ctx)()

	spots := make([]domain.Spot, 0, len(r.store.spots))
	for _, s := range r.store.spots {
		spots = append(spots, s)
	}
	sort.Slice(spots, func(i, j int) bool { return spots[i].ID < spots[j].ID })
	return spots, nil
}

func (r *spotRepository) FindByParkingLotID(ctx context.Context, parkingLotID int64) ([]domain.Spot, error) {
	defer r.store.lock(ctx)()

	spots := make([]domain.Spot, 0)
	for _, s := range r.store.spots {
		if s.ParkingLotID == parkingLotID {
			spots = append(spots, s)
		}
	}
	sort.Slice(spots, func(i, j int) bool { return spots[i].ID < spots[j].ID })
	return spots, nil
}

func (r *spotRepository) Update(ctx context.Context, spot *domain.Spot) (*domain.Spot, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.spots[spot.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, s := range r.store.spots {
		if s.ID != spot.ID && s.ParkingLotID == spot.ParkingLotID && s.Number == spot.Number {
			return nil, repository.ErrDuplicateEntry
		}
	}
	r.store.spots[spot.ID] = *spot
	return spot, nil
}

func (r *spotRepository) UpdateStatus(ctx context.Context, id int64, status domain.SpotStatus, changed time.Time) error {
	defer r.store.lock(ctx)()

	spot, ok := r.store.spots[id]
	if !ok {
		return repository.ErrNotFound
	}
	spot.Status = status
	spot.Changed = changed
	r.store.spots[id] = spot
	return nil
}

func (r *spotRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.spots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.spots, id)
	return nil
}

func (r *spotRepository) DeleteByParkingLotID(ctx context.Context, parkingLotID int64) error {
	defer r.store.lock(ctx)()

	for id, s := range r.store.spots {
		if s.ParkingLotID == parkingLotID {
			delete(r.store.spots, id)
		}
	}
	return nil
}

func (r *spotRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	defer r.store.lock(ctx)()

	_, ok := r.store.spots[id]
	return ok, nil
}

func (r *spotRepository) ExistsByLotAndNumber(ctx context.Context, parkingLotID int64, number int) (bool, error) {
	defer r.store.lock(ctx)()

	for _, s := range r.store.spots {
		if s.ParkingLotID == parkingLotID && s.Number == number {
			return true, nil
		}
	}
	return false, nil
}
