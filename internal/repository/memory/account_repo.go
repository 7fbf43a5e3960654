package memory

import (
	"context"
	"time"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type accountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) repository.AccountRepository {
	return &accountRepository{store: store}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	defer r.store.lock(ctx)()

	for _, a := range r.store.accounts {
		if a.Username == account.Username || a.UserID == account.UserID {
			return nil, repository.ErrDuplicateEntry
		}
	}
	account.ID = r.store.nextID()
	r.store.accounts[account.ID] = *account
	return account, nil
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	defer r.store.lock(ctx)()

	for _, a := range r.store.accounts {
		if a.Username == username {
			account := a
			return &account, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepository) FindByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	defer r.store.lock(ctx)()

	for _, a := range r.store.accounts {
		if a.UserID == userID {
			account := a
			return &account, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepository) UpdateRole(ctx context.Context, userID int64, role string) error {
	defer r.store.lock(ctx)()

	for id, a := range r.store.accounts {
		if a.UserID == userID {
			a.Role = role
			a.Changed = time.Now().UTC()
			r.store.accounts[id] = a
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	defer r.store.lock(ctx)()

	for _, a := range r.store.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}
