// Package memory implements the repository interfaces over in-process maps.
// It backs the service tests and the -store=memory mode; a store-wide mutex
// held for the whole unit of work gives the same serialization the Postgres
// implementation gets from transactions and row locks.
package memory

import (
	"context"
	"sync"

	"parking_management/internal/domain"
	"parking_management/internal/repository"
)

type Store struct {
	mu  sync.Mutex
	seq int64

	users        map[int64]domain.User
	accounts     map[int64]domain.Account
	vehicles     map[int64]domain.Vehicle
	tariffs      map[int64]domain.Tariff
	lots         map[int64]domain.ParkingLot
	spots        map[int64]domain.Spot
	reservations map[int64]domain.Reservation
	sessions     map[int64]domain.ParkingSession
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		accounts:     make(map[int64]domain.Account),
		vehicles:     make(map[int64]domain.Vehicle),
		tariffs:      make(map[int64]domain.Tariff),
		lots:         make(map[int64]domain.ParkingLot),
		spots:        make(map[int64]domain.Spot),
		reservations: make(map[int64]domain.Reservation),
		sessions:     make(map[int64]domain.ParkingSession),
	}
}

type txKey struct{}

// lock acquires the store mutex unless the context already runs inside a
// unit of work started by the TxManager. It returns the matching unlock.
func (s *Store) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

type txManager struct {
	store *Store
}

func NewTxManager(store *Store) repository.TxManager {
	return &txManager{store: store}
}

// WithinTx holds the store mutex across fn, so concurrent units of work
// serialize completely. The services only mutate after every invariant check
// has passed, which is what keeps partial writes from becoming visible.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}
