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

type pgAccountRepository struct {
	db *sql.DB
}

func NewPgAccountRepository(db *sql.DB) repository.AccountRepository {
	return &pgAccountRepository{db: db}
}

const accountColumns = `id, user_id, username, password, role, created, changed`

func (r *pgAccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `INSERT INTO accounts (user_id, username, password, role, created, changed)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		account.UserID, account.Username, account.Password, account.Role, account.Created, account.Changed,
	).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("AccountRepository.Create: %w", err)
	}
	return account, nil
}

func (r *pgAccountRepository) findOne(ctx context.Context, query string, arg any) (*domain.Account, error) {
	account := &domain.Account{}
	err := q(ctx, r.db).QueryRowContext(ctx, query, arg).Scan(
		&account.ID, &account.UserID, &account.Username, &account.Password,
		&account.Role, &account.Created, &account.Changed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	account.Created = account.Created.In(time.UTC)
	account.Changed = account.Changed.In(time.UTC)
	return account, nil
}

func (r *pgAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account, err := r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("AccountRepository.FindByUsername: %w", err)
	}
	return account, err
}

func (r *pgAccountRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	account, err := r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE user_id = $1`, userID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("AccountRepository.FindByUserID: %w", err)
	}
	return account, err
}

func (r *pgAccountRepository) UpdateRole(ctx context.Context, userID int64, role string) error {
	res, err := q(ctx, r.db).ExecContext(ctx,
		`UPDATE accounts SET role = $1, changed = CURRENT_TIMESTAMP WHERE user_id = $2`, role, userID)
	if err != nil {
		return fmt.Errorf("AccountRepository.UpdateRole: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("AccountRepository.UpdateRole (rows affected): %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgAccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := q(ctx, r.db).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("AccountRepository.ExistsByUsername: %w", err)
	}
	return exists, nil
}
