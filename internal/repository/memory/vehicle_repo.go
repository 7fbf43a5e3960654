package memory

import (
	"context"
	"sort"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type vehicleRepository struct {
	store *Store
}

func NewVehicleRepository(store *Store) repository.VehicleRepository {
	return &vehicleRepository{store: store}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	defer r.store.lock(ctx)()

	for _, v := range r.store.vehicles {
		if v.PlateNumber == vehicle.PlateNumber {
			return nil, repository.ErrDuplicateEntry
		}
	}
	vehicle.ID = r.store.nextID()
	r.store.vehicles[vehicle.ID] = *vehicle
	return vehicle, nil
}

func (r *vehicleRepository) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	defer r.store.lock(ctx)()

	vehicle, ok := r.store.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &vehicle, nil
}

func (r *vehicleRepository) FindAll(ctx context.Context) ([]domain.Vehicle, error) {
	defer r.store.lock(ctx)()

	vehicles := make([]domain.Vehicle, 0, len(r.store.vehicles))
	for _, v := range r.store.vehicles {
		vehicles = append(vehicles, v)
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

func (r *vehicleRepository) FindByUserID(ctx context.Context, userID int64) ([]domain.Vehicle, error) {
	defer r.store.lock(ctx)()

	var vehicles []domain.Vehicle
	for _, v := range r.store.vehicles {
		if v.UserID == userID {
			vehicles = append(vehicles, v)
		}
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.vehicles[vehicle.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, v := range r.store.vehicles {
		if v.ID != vehicle.ID && v.PlateNumber == vehicle.PlateNumber {
			return nil, repository.ErrDuplicateEntry
		}
	}
	r.store.vehicles[vehicle.ID] = *vehicle
	return vehicle, nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.vehicles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.vehicles, id)
	return nil
}

func (r *vehicleRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	defer r.store.lock(ctx)()

	_, ok := r.store.vehicles[id]
	return ok, nil
}

func (r *vehicleRepository) ExistsByUserID(ctx context.Context, userID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, v := range r.store.vehicles {
		if v.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *vehicleRepository) ExistsByPlateNumber(ctx context.Context, plateNumber string, excludeID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, v := range r.store.vehicles {
		if v.PlateNumber == plateNumber && v.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}
