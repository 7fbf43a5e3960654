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

type pgParkingSessionRepository struct {
	db *sql.DB
}

func NewPgParkingSessionRepository(db *sql.DB) repository.ParkingSessionRepository {
	return &pgParkingSessionRepository{db: db}
}

const sessionColumns = `id, vehicle_id, spot_id, start_time, end_time, status, reservation_id, total_cost, created, changed`

func (r *pgParkingSessionRepository) Create(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `INSERT INTO parking_sessions (vehicle_id, spot_id, start_time, end_time, status, reservation_id, total_cost, created, changed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		session.VehicleID, session.SpotID, session.StartTime, session.EndTime,
		session.Status, session.ReservationID, session.TotalCost, session.Created, session.Changed,
	).Scan(&session.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Create: %w", err)
	}
	return session, nil
}

func normalizeSession(session *domain.ParkingSession) {
	session.StartTime = session.StartTime.In(time.UTC)
	if session.EndTime.Valid {
		session.EndTime.Time = session.EndTime.Time.In(time.UTC)
	}
	session.Created = session.Created.In(time.UTC)
	session.Changed = session.Changed.In(time.UTC)
}

func (r *pgParkingSessionRepository) FindByID(ctx context.Context, id int64) (*domain.ParkingSession, error) {
	session := &domain.ParkingSession{}
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE id = $1`

	err := q(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.VehicleID, &session.SpotID, &session.StartTime, &session.EndTime,
		&session.Status, &session.ReservationID, &session.TotalCost, &session.Created, &session.Changed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindByID: %w", err)
	}
	normalizeSession(session)
	return session, nil
}

func (r *pgParkingSessionRepository) queryMany(ctx context.Context, query string, args ...any) ([]domain.ParkingSession, error) {
	rows, err := q(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.ParkingSession
	for rows.Next() {
		var session domain.ParkingSession
		if err := rows.Scan(
			&session.ID, &session.VehicleID, &session.SpotID, &session.StartTime, &session.EndTime,
			&session.Status, &session.ReservationID, &session.TotalCost, &session.Created, &session.Changed,
		); err != nil {
			return nil, err
		}
		normalizeSession(&session)
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (r *pgParkingSessionRepository) FindAll(ctx context.Context) ([]domain.ParkingSession, error) {
	sessions, err := r.queryMany(ctx, `SELECT `+sessionColumns+` FROM parking_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindAll: %w", err)
	}
	return sessions, nil
}

func (r *pgParkingSessionRepository) FindBySpotID(ctx context.Context, spotID int64) ([]domain.ParkingSession, error) {
	sessions, err := r.queryMany(ctx,
		`SELECT `+sessionColumns+` FROM parking_sessions WHERE spot_id = $1 ORDER BY start_time DESC`, spotID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindBySpotID: %w", err)
	}
	return sessions, nil
}

func (r *pgParkingSessionRepository) FindByVehicleID(ctx context.Context, vehicleID int64) ([]domain.ParkingSession, error) {
	sessions, err := r.queryMany(ctx,
		`SELECT `+sessionColumns+` FROM parking_sessions WHERE vehicle_id = $1 ORDER BY start_time DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindByVehicleID: %w", err)
	}
	return sessions, nil
}

func (r *pgParkingSessionRepository) Update(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `UPDATE parking_sessions
	          SET vehicle_id = $1, spot_id = $2, start_time = $3, end_time = $4, status = $5,
	              reservation_id = $6, total_cost = $7, changed = $8
	          WHERE id = $9
	          RETURNING changed`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		session.VehicleID, session.SpotID, session.StartTime, session.EndTime,
		session.Status, session.ReservationID, session.TotalCost, session.Changed, session.ID,
	).Scan(&session.Changed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Update: %w", err)
	}
	return session, nil
}

func (r *pgParkingSessionRepository) Delete(ctx context.Context, id int64) error {
	res, err := q(ctx, r.db).ExecContext(ctx, `DELETE FROM parking_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingSessionRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSessionRepository.Delete (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSessionRepository) existsWhere(ctx context.Context, cond string, args ...any) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM parking_sessions WHERE `+cond+`)`, args...,
	).Scan(&exists)
	return exists, err
}

func (r *pgParkingSessionRepository) ExistsActiveBySpotID(ctx context.Context, spotID int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `spot_id = $1 AND status = $2`, spotID, domain.SessionActive)
	if err != nil {
		return false, fmt.Errorf("ParkingSessionRepository.ExistsActiveBySpotID: %w", err)
	}
	return exists, nil
}

func (r *pgParkingSessionRepository) ExistsActiveByVehicleID(ctx context.Context, vehicleID int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `vehicle_id = $1 AND status = $2`, vehicleID, domain.SessionActive)
	if err != nil {
		return false, fmt.Errorf("ParkingSessionRepository.ExistsActiveByVehicleID: %w", err)
	}
	return exists, nil
}

func (r *pgParkingSessionRepository) ExistsByReservationID(ctx context.Context, reservationID int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `reservation_id = $1`, reservationID)
	if err != nil {
		return false, fmt.Errorf("ParkingSessionRepository.ExistsByReservationID: %w", err)
	}
	return exists, nil
}

func (r *pgParkingSessionRepository) ExistsByVehicleID(ctx context.Context, vehicleID int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `vehicle_id = $1`, vehicleID)
	if err != nil {
		return false, fmt.Errorf("ParkingSessionRepository.ExistsByVehicleID: %w", err)
	}
	return exists, nil
}

func (r *pgParkingSessionRepository) ExistsBySpotID(ctx context.Context, spotID int64) (bool, error) {
	exists, err := r.existsWhere(ctx, `spot_id = $1`, spotID)
	if err != nil {
		return false, fmt.Errorf("ParkingSessionRepository.ExistsBySpotID: %w", err)
	}
	return exists, nil
}
