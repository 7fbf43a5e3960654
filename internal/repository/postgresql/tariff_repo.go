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

type pgTariffRepository struct {
	db *sql.DB
}

func NewPgTariffRepository(db *sql.DB) repository.TariffRepository {
	return &pgTariffRepository{db: db}
}

const tariffColumns = `id, name, hour_price, billing_step_minutes, free_minutes, status, created, changed`

func (r *pgTariffRepository) Create(ctx context.Context, tariff *domain.Tariff) (*domain.Tariff, error) {
	query := `INSERT INTO tariffs (name, hour_price, billing_step_minutes, free_minutes, status, created, changed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		tariff.Name, tariff.HourPrice, tariff.BillingStepMinutes, tariff.FreeMinutes,
		tariff.Status, tariff.Created, tariff.Changed,
	).Scan(&tariff.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("TariffRepository.Create: %w", err)
	}
	return tariff, nil
}

func (r *pgTariffRepository) FindByID(ctx context.Context, id int64) (*domain.Tariff, error) {
	tariff := &domain.Tariff{}
	query := `SELECT ` + tariffColumns + ` FROM tariffs WHERE id = $1`

	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&tariff.ID, &tariff.Name, &tariff.HourPrice, &tariff.BillingStepMinutes, &tariff.FreeMinutes,
		&tariff.Status, &tariff.Created, &tariff.Changed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TariffRepository.FindByID: %w", err)
	}
	tariff.Created = tariff.Created.In(time.UTC)
	tariff.Changed = tariff.Changed.In(time.UTC)
	return tariff, nil
}

func (r *pgTariffRepository) FindAll(ctx context.Context) ([]domain.Tariff, error) {
	query := `SELECT ` + tariffColumns + ` FROM tariffs ORDER BY id`

	rows, err := q(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("TariffRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var tariffs []domain.Tariff
	for rows.Next() {
		var tariff domain.Tariff
		if err := rows.Scan(
			&tariff.ID, &tariff.Name, &tariff.HourPrice, &tariff.BillingStepMinutes, &tariff.FreeMinutes,
			&tariff.Status, &tariff.Created, &tariff.Changed,
		); err != nil {
			return nil, fmt.Errorf("TariffRepository.FindAll (scanning row): %w", err)
		}
		tariff.Created = tariff.Created.In(time.UTC)
		tariff.Changed = tariff.Changed.In(time.UTC)
		tariffs = append(tariffs, tariff)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("TariffRepository.FindAll (rows error): %w", err)
	}
	return tariffs, nil
}

func (r *pgTariffRepository) Update(ctx context.Context, tariff *domain.Tariff) (*domain.Tariff, error) {
	query := `UPDATE tariffs
	          SET name = $1, hour_price = $2, billing_step_minutes = $3, free_minutes = $4, status = $5, changed = $6
	          WHERE id = $7
	          RETURNING changed`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		tariff.Name, tariff.HourPrice, tariff.BillingStepMinutes, tariff.FreeMinutes,
		tariff.Status, tariff.Changed, tariff.ID,
	).Scan(&tariff.Changed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("TariffRepository.Update: %w", err)
	}
	return tariff, nil
}

func (r *pgTariffRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM tariffs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("TariffRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("TariffRepository.Delete (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgTariffRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tariffs WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("TariffRepository.ExistsByID: %w", err)
	}
	return exists, nil
}

func (r *pgTariffRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tariffs WHERE name = $1 AND id <> $2)`, name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("TariffRepository.ExistsByName: %w", err)
	}
	return exists, nil
}
