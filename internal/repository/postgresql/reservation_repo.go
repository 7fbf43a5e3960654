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

type pgReservationRepository struct {
	db *sql.DB
}

func NewPgReservationRepository(db *sql.DB) repository.ReservationRepository {
	return &pgReservationRepository{db: db}
}

const reservationColumns = `id, vehicle_id, spot_id, start_time, end_time, status, created, changed`

func (r *pgReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	query := `INSERT INTO reservations (vehicle_id, spot_id, start_time, end_time, status, created, changed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		reservation.VehicleID, reservation.SpotID, reservation.StartTime, reservation.EndTime,
		reservation.Status, reservation.Created, reservation.Changed,
	).Scan(&reservation.ID)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.Create: %w", err)
	}
	return reservation, nil
}

func (r *pgReservationRepository) FindByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	reservation := &domain.Reservation{}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&reservation.ID, &reservation.VehicleID, &reservation.SpotID,
		&reservation.StartTime, &reservation.EndTime, &reservation.Status,
		&reservation.Created, &reservation.Changed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindByID: %w", err)
	}
	normalizeReservation(reservation)
	return reservation, nil
}

func normalizeReservation(reservation *domain.Reservation) {
	reservation.StartTime = reservation.StartTime.In(time.UTC)
	reservation.EndTime = reservation.EndTime.In(time.UTC)
	reservation.Created = reservation.Created.In(time.UTC)
	reservation.Changed = reservation.Changed.In(time.UTC)
}

func (r *pgReservationRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var reservation domain.Reservation
		if err := rows.Scan(
			&reservation.ID, &reservation.VehicleID, &reservation.SpotID,
			&reservation.StartTime, &reservation.EndTime, &reservation.Status,
			&reservation.Created, &reservation.Changed,
		); err != nil {
			return nil, err
		}
		normalizeReservation(&reservation)
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}

func (r *pgReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	reservations, err := r.queryMany(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindAll: %w", err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) FindByVehicleID(ctx context.Context, vehicleID int64) ([]domain.Reservation, error) {
	reservations, err := r.queryMany(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE vehicle_id = $1 ORDER BY start_time`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindByVehicleID: %w", err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) FindBySpotID(ctx context.Context, spotID int64) ([]domain.Reservation, error) {
	reservations, err := r.queryMany(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE spot_id = $1 ORDER BY start_time`, spotID)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindBySpotID: %w", err)
	}
	return reservations, nil
}

func (r *pgReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	query := `UPDATE reservations
	          SET vehicle_id = $1, spot_id = $2, start_time = $3, end_time = $4, status = $5, changed = $6
	          WHERE id = $7
	          RETURNING changed`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		reservation.VehicleID, reservation.SpotID, reservation.StartTime, reservation.EndTime,
		reservation.Status, reservation.Changed, reservation.ID,
	).Scan(&reservation.Changed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.Update: %w", err)
	}
	return reservation, nil
}

func (r *pgReservationRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ReservationRepository.Delete (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgReservationRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ReservationRepository.ExistsByID: %w", err)
	}
	return exists, nil
}

// Half-open interval overlap: an ACTIVE reservation [s, e) overlaps [start,
// end) iff s < end AND e > start. Touching boundaries do not overlap.
func (r *pgReservationRepository) ExistsActiveOverlapping(ctx context.Context, spotID int64, start, end time.Time, excludeID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(
		     SELECT 1 FROM reservations
		     WHERE spot_id = $1 AND status = $2 AND id <> $3
		       AND start_time < $4 AND end_time > $5
		 )`,
		spotID, domain.ReservationActive, excludeID, end, start,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ReservationRepository.ExistsActiveOverlapping: %w", err)
	}
	return exists, nil
}

func (r *pgReservationRepository) ExistsByVehicleID(ctx context.Context, vehicleID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE vehicle_id = $1)`, vehicleID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ReservationRepository.ExistsByVehicleID: %w", err)
	}
	return exists, nil
}

func (r *pgReservationRepository) ExistsBySpotID(ctx context.Context, spotID int64) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE spot_id = $1)`, spotID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ReservationRepository.ExistsBySpotID: %w", err)
	}
	return exists, nil
}

func (r *pgReservationRepository) ExpireOutdated(ctx context.Context, now time.Time) (int64, error) {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE reservations SET status = $1, changed = $2 WHERE status = $3 AND end_time <= $2`,
		domain.ReservationExpired, now, domain.ReservationActive)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.ExpireOutdated: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.ExpireOutdated (rows affected): %w", err)
	}
	return affected, nil
}
