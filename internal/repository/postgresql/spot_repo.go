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

type pgSpotRepository struct {
	db *sql.DB
}

func NewPgSpotRepository(db *sql.DB) repository.SpotRepository {
	return &pgSpotRepository{db: db}
}

const spotColumns = `id, number, type, status, parking_lot_id, level, created, changed`

func (r *pgSpotRepository) Create(ctx context.Context, spot *domain.Spot) (*domain.Spot, error) {
	query := `INSERT INTO spots (number, type, status, parking_lot_id, level, created, changed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		spot.Number, spot.Type, spot.Status, spot.ParkingLotID, spot.Level, spot.Created, spot.Changed,
	).Scan(&spot.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("SpotRepository.Create: %w", err)
	}
	return spot, nil
}

func (r *pgSpotRepository) findByID(ctx context.Context, id int64, forUpdate bool) (*domain.Spot, error) {
	spot := &domain.Spot{}
	query := `SELECT ` + spotColumns + ` FROM spots WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&spot.ID, &spot.Number, &spot.Type, &spot.Status, &spot.ParkingLotID, &spot.Level, &spot.Created, &spot.Changed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	spot.Created = spot.Created.In(time.UTC)
	spot.Changed = spot.Changed.In(time.UTC)
	return spot, nil
}

func (r *pgSpotRepository) FindByID(ctx context.Context, id int64) (*domain.Spot, error) {
	spot, err := r.findByID(ctx, id, false)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("SpotRepository.FindByID: %w", err)
	}
	return spot, err
}

func (r *pgSpotRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Spot, error) {
	spot, err := r.findByID(ctx, id, true)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("SpotRepository.FindByIDForUpdate: %w", err)
	}
	return spot, err
}

func (r *pgSpotRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Spot, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spots []domain.Spot
	for rows.Next() {
		var spot domain.Spot
		if err := rows.Scan(&spot.ID, &spot.Number, &spot.Type, &spot.Status, &spot.ParkingLotID, &spot.Level, &spot.Created, &spot.Changed); err != nil {
			return nil, err
		}
		spot.Created = spot.Created.In(time.UTC)
		spot.Changed = spot.Changed.In(time.UTC)
		spots = append(spots, spot)
	}
	return spots, rows.Err()
}

func (r *pgSpotRepository) FindAll(ctx context.Context) ([]domain.Spot, error) {
	spots, err := r.queryMany(ctx, `SELECT `+spotColumns+` FROM spots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("SpotRepository.FindAll: %w", err)
	}
	return spots, nil
}

func (r *pgSpotRepository) FindByParkingLotID(ctx context.Context, parkingLotID int64) ([]domain.Spot, error) {
	spots, err := r.queryMany(ctx,
		`SELECT `+spotColumns+` FROM spots WHERE parking_lot_id = $1 ORDER BY level, number`, parkingLotID)
	if err != nil {
		return nil, fmt.Errorf("SpotRepository.FindByParkingLotID: %w", err)
	}
	return spots, nil
}

func (r *pgSpotRepository) Update(ctx context.Context, spot *domain.Spot) (*domain.Spot, error) {
	query := `UPDATE spots
	          SET number = $1, type = $2, status = $3, parking_lot_id = $4, level = $5, changed = $6
	          WHERE id = $7
	          RETURNING changed`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		spot.Number, spot.Type, spot.Status, spot.ParkingLotID, spot.Level, spot.Changed, spot.ID,
	).Scan(&spot.Changed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("SpotRepository.Update: %w", err)
	}
	return spot, nil
}

func (r *pgSpotRepository) UpdateStatus(ctx context.Context, id int64, status domain.SpotStatus, changed time.Time) error {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE spots SET status = $1, changed = $2 WHERE id = $3`, status, changed, id)
	if err != nil {
		return fmt.Errorf("SpotRepository.UpdateStatus: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SpotRepository.UpdateStatus (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgSpotRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM spots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("SpotRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("SpotRepository.Delete (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgSpotRepository) DeleteByParkingLotID(ctx context.Context, parkingLotID int64) error {
	_, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM spots WHERE parking_lot_id = $1`, parkingLotID)
	if err != nil {
		return fmt.Errorf("SpotRepository.DeleteByParkingLotID: %w", err)
	}
	return nil
}

func (r *pgSpotRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM spots WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("SpotRepository.ExistsByID: %w", err)
	}
	return exists, nil
}

func (r *pgSpotRepository) ExistsByLotAndNumber(ctx context.Context, parkingLotID int64, number int) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM spots WHERE parking_lot_id = $1 AND number = $2)`, parkingLotID, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("SpotRepository.ExistsByLotAndNumber: %w", err)
	}
	return exists, nil
}
