package memory

import (
	"context"
	"sort"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	defer r.store.lock(ctx)()

	for _, u := range r.store.users {
		if u.Email == user.Email {
			return nil, repository.ErrDuplicateEntry
		}
	}
	user.ID = r.store.nextID()
	r.store.users[user.ID] = *user
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	defer r.store.lock(ctx)()

	user, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	defer r.store.lock(ctx)()

	users := make([]domain.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	defer r.store.lock(ctx)()

	if _, ok := r.store.users[user.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	for _, u := range r.store.users {
		if u.ID != user.ID && u.Email == user.Email {
			return nil, repository.ErrDuplicateEntry
		}
	}
	r.store.users[user.ID] = *user
	return user, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	defer r.store.lock(ctx)()

	if _, ok := r.store.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.users, id)
	return nil
}

func (r *userRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	defer r.store.lock(ctx)()

	_, ok := r.store.users[id]
	return ok, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	defer r.store.lock(ctx)()

	for _, u := range r.store.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}
