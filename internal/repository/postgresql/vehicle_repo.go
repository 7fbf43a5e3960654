package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

const vehicleColumns = `id, plate_number, type, user_id, created, changed`

func (r *pgVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	query := `INSERT INTO vehicles (plate_number, type, user_id, created, changed)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		vehicle.PlateNumber, vehicle.Type, vehicle.UserID, vehicle.Created, vehicle.Changed,
	).Scan(&vehicle.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("VehicleRepository.Create: %w", err)
	}
	return vehicle, nil
}

func (r *pgVehicleRepository) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{}
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&vehicle.ID, &vehicle.PlateNumber, &vehicle.Type, &vehicle.UserID, &vehicle.Created, &vehicle.Changed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByID: %w", err)
	}
	vehicle.Created = vehicle.Created.In(time.UTC)
	vehicle.Changed = vehicle.Changed.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Vehicle, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		if err := rows.Scan(&vehicle.ID, &vehicle.PlateNumber, &vehicle.Type, &vehicle.UserID, &vehicle.Created, &vehicle.Changed); err != nil {
			return nil, err
		}
		vehicle.Created = vehicle.Created.In(time.UTC)
		vehicle.Changed = vehicle.Changed.In(time.UTC)
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func (r *pgVehicleRepository) FindAll(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := r.queryMany(ctx, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindAll: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) FindByUserID(ctx context.Context, userID int64) ([]domain.Vehicle, error) {
	vehicles, err := r.queryMany(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindByUserID: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	query := `UPDATE vehicles
	          SET plate_number = $1, type = $2, user_id = $3, changed = $4
	          WHERE id = $5
	          RETURNING changed`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		vehicle.PlateNumber, vehicle.Type, vehicle.UserID, vehicle.Changed, vehicle.ID,
	).Scan(&vehicle.Changed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("VehicleRepository.Update: %w", err)
	}
	return vehicle, nil
}

func (r *pgVehicleRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("VehicleRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("VehicleRepository.Delete (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgVehicleRepository) existsWhere(ctx context.Context, cond string, args ...any) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM vehicles WHERE `+cond+`)`, args...,
	).Scan(&exists)
	return exists, err
}

func (r *pgVehicleRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("VehicleRepository.ExistsByID: %w", err)
	}
	return exists, nil
}

func (r *pgVehicleRepository) ExistsByUserID(ctx context.Context, userID int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("VehicleRepository.ExistsByUserID: %w", err)
	}
	return exists, nil
}

func (r *pgVehicleRepository) ExistsByPlateNumber(ctx context.Context, plateNumber string, excludeID int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `plate_number = $1 AND id <> $2`, plateNumber, excludeID)
	if err != nil {
		return false, fmt.Errorf("VehicleRepository.ExistsByPlateNumber: %w", err)
	}
	return exists, nil
}
