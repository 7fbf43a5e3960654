package memory

import (
	"context"
	"sort"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type parkingLotRepository struct {
	store *Store
}

func NewParkingLotRepository(store *Store) repository.ParkingLotRepository {
	return &parkingLotRepository{store: store}
}

func (r *parkingLotRepository) Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	defer r.store.lock(ctx)()

	for _, l := range r.store.lots {
		if l.Address == lot.Address {
			return nil, repository.ErrDuplicateEntry
		}
	}
	lot.ID = r.store.nextID()
	r.store.lots[lot.ID] = *lot
	return lot, nil
}

func (r *parkingLotRepository) FindByID(ctx context.Context, id int64) (*domain.ParkingLot, error) {
	defer r.store.lock(ctx)()

	lot, ok := r.store.lots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &lot, nil
}

func (r *parkingLotRepository) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	defer r.store.lock(ctx)()

	lots := make([]domain.ParkingLot, 0, len(r.store.lots))
	for _, l := range r.store.lots {
		lots = append(lots, l)
	}
	sort.Slice(lots, func(i, j int) bool { return lots[i].ID < lots[j].ID })
	return lots, nil
}

func (r *parkingLotRepository) Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.lots[lot.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, l := range r.store.lots {
		if l.ID != lot.ID && l.Address == lot.Address {
			return nil, repository.ErrDuplicateEntry
		}
	}
	r.store.lots[lot.ID] = *lot
	return lot, nil
}

func (r *parkingLotRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.lots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.lots, id)
	return nil
}

func (r *parkingLotRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	defer r.store.lock(ctx)()

	_, ok := r.store.lots[id]
	return ok, nil
}

func (r *parkingLotRepository) ExistsByAddress(ctx context.Context, address string, excludeID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, l := range r.store.lots {
		if l.Address == address && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *parkingLotRepository) ExistsByTariffID(ctx context.Context, tariffID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, l := range r.store.lots {
		if l.TariffID == tariffID {
			return true, nil
		}
	}
	return false, nil
}
