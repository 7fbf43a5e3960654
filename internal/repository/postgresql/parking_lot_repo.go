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

type pgParkingLotRepository struct {
	db *sql.DB
}

func NewPgParkingLotRepository(db *sql.DB) repository.ParkingLotRepository {
	return &pgParkingLotRepository{db: db}
}

const parkingLotColumns = `id, name, address, status, tariff_id, created, changed`

func (r *pgParkingLotRepository) Create(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	query := `INSERT INTO parking_lots (name, address, status, tariff_id, created, changed)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		lot.Name, lot.Address, lot.Status, lot.TariffID, lot.Created, lot.Changed,
	).Scan(&lot.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("ParkingLotRepository.Create: %w", err)
	}
	return lot, nil
}

func (r *pgParkingLotRepository) FindByID(ctx context.Context, id int64) (*domain.ParkingLot, error) {
	lot := &domain.ParkingLot{}
	query := `SELECT ` + parkingLotColumns + ` FROM parking_lots WHERE id = $1`

	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&lot.ID, &lot.Name, &lot.Address, &lot.Status, &lot.TariffID, &lot.Created, &lot.Changed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingLotRepository.FindByID: %w", err)
	}
	lot.Created = lot.Created.In(time.UTC)
	lot.Changed = lot.Changed.In(time.UTC)
	return lot, nil
}

func (r *pgParkingLotRepository) FindAll(ctx context.Context) ([]domain.ParkingLot, error) {
	query := `SELECT ` + parkingLotColumns + ` FROM parking_lots ORDER BY id`

	rows, err := q(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var lots []domain.ParkingLot
	for rows.Next() {
		var lot domain.ParkingLot
		if err := rows.Scan(&lot.ID, &lot.Name, &lot.Address, &lot.Status, &lot.TariffID, &lot.Created, &lot.Changed); err != nil {
			return nil, fmt.Errorf("ParkingLotRepository.FindAll (scanning row): %w", err)
		}
		lot.Created = lot.Created.In(time.UTC)
		lot.Changed = lot.Changed.In(time.UTC)
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingLotRepository.FindAll (rows error): %w", err)
	}
	return lots, nil
}

func (r *pgParkingLotRepository) Update(ctx context.Context, lot *domain.ParkingLot) (*domain.ParkingLot, error) {
	query := `UPDATE parking_lots
	          SET name = $1, address = $2, status = $3, tariff_id = $4, changed = $5
	          WHERE id = $6
	          RETURNING changed`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		lot.Name, lot.Address, lot.Status, lot.TariffID, lot.Changed, lot.ID,
	).Scan(&lot.Changed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("ParkingLotRepository.Update: %w", err)
	}
	return lot, nil
}

func (r *pgParkingLotRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM parking_lots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingLotRepository.Delete (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingLotRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM parking_lots WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ParkingLotRepository.ExistsByID: %w", err)
	}
	return exists, nil
}

func (r *pgParkingLotRepository) ExistsByAddress(ctx context.Context, address string, excludeID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM parking_lots WHERE address = $1 AND id <> $2)`, address, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ParkingLotRepository.ExistsByAddress: %w", err)
	}
	return exists, nil
}

func (r *pgParkingLotRepository) ExistsByTariffID(ctx context.Context, tariffID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM parking_lots WHERE tariff_id = $1)`, tariffID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ParkingLotRepository.ExistsByTariffID: %w", err)
	}
	return exists, nil
}
