package memory

import (
	"context"
	"sort"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type tariffRepository struct {
	store *Store
}

func NewTariffRepository(store *Store) repository.TariffRepository {
	return &tariffRepository{store: store}
}

func (r *tariffRepository) Create(ctx context.Context, tariff *domain.Tariff) (*domain.Tariff, error) {
	defer r.store.lock(ctx)()

	for _, t := range r.store.tariffs {
		if t.Name == tariff.Name {
			return nil, repository.ErrDuplicateEntry
		}
	}
	tariff.ID = r.store.nextID()
	r.store.tariffs[tariff.ID] = *tariff
	return tariff, nil
}

func (r *tariffRepository) FindByID(ctx context.Context, id int64) (*domain.Tariff, error) {
	defer r.store.lock(ctx)()

	tariff, ok := r.store.tariffs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tariff, nil
}

func (r *tariffRepository) FindAll(ctx context.Context) ([]domain.Tariff, error) {
	defer r.store.lock(ctx)()

	tariffs := make([]domain.Tariff, 0, len(r.store.tariffs))
	for _, t := range r.store.tariffs {
		tariffs = append(tariffs, t)
	}
	sort.Slice(tariffs, func(i, j int) bool { return tariffs[i].ID < tariffs[j].ID })
	return tariffs, nil
}

func (r *tariffRepository) Update(ctx context.Context, tariff *domain.Tariff) (*domain.Tariff, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.tariffs[tariff.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, t := range r.store.tariffs {
		if t.ID != tariff.ID && t.Name == tariff.Name {
			return nil, repository.ErrDuplicateEntry
		}
	}
	r.store.tariffs[tariff.ID] = *tariff
	return tariff, nil
}

func (r *tariffRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.tariffs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.tariffs, id)
	return nil
}

func (r *tariffRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	defer r.store.lock(ctx)()

	_, ok := r.store.tariffs[id]
	return ok, nil
}

func (r *tariffRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, t := range r.store.tariffs {
		if t.Name == name && t.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}
