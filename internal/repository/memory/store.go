// Package memory is an in-process implementation of the repository interfaces.
// It backs the service when no Postgres DSN is configured and is used by tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
)

// Store holds every table behind one mutex. Transactions hold the mutex for their whole
// duration, so they are fully serialized, and a failed transaction restores a snapshot.
type Store struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time
}

type tables struct {
	seq      map[string]int64
	users    map[int64]domain.User
	accounts map[int64]domain.Account
	entries  []domain.LedgerEntry
	products map[int64]domain.Product
	orders   map[int64]domain.Order
	items    map[int64]domain.OrderItem
	profiles map[int64]domain.UserProfile
	posts    map[int64]domain.Post
}

// Stats reports row counts per table.
type Stats struct {
	Users, Accounts, LedgerEntries, Products, Orders, OrderItems, Profiles, Posts int
}

type txKey struct{}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newTables(), now: func() time.Time { return time.Now().UTC() }}
}

func newTables() *tables {
	return &tables{
		seq:      map[string]int64{},
		users:    map[int64]domain.User{},
		accounts: map[int64]domain.Account{},
		products: map[int64]domain.Product{},
		orders:   map[int64]domain.Order{},
		items:    map[int64]domain.OrderItem{},
		profiles: map[int64]domain.UserProfile{},
		posts:    map[int64]domain.Post{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	c.entries = append(c.entries, t.entries...)
	for k, v := range t.products {
		c.products[k] = v
	}
	for k, v := range t.orders {
		c.orders[k] = v
	}
	for k, v := range t.items {
		c.items[k] = v
	}
	for k, v := range t.profiles {
		c.profiles[k] = v
	}
	for k, v := range t.posts {
		c.posts[k] = v
	}
	return c
}

func (t *tables) nextID(table string) int64 {
	t.seq[table]++
	return t.seq[table]
}

// WithinTx implements repository.Transactor. The store mutex is held until fn returns:
// repository calls inside fn must use the ctx passed to fn, a ctx from outside the
// transaction blocks forever on the held mutex.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if r := recover(); r != nil {
			s.data = snapshot
			panic(r)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// lock acquires the store mutex unless ctx already runs inside one of its transactions.
// Calling it with a non-transaction ctx while a transaction is open self-deadlocks.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Stats returns current row counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Users:         len(s.data.users),
		Accounts:      len(s.data.accounts),
		LedgerEntries: len(s.data.entries),
		Products:      len(s.data.products),
		Orders:        len(s.data.orders),
		OrderItems:    len(s.data.items),
		Profiles:      len(s.data.profiles),
		Posts:         len(s.data.posts),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() repository.AccountRepository { return &accountRepo{s: s} }

// Products returns the product repository view of the store.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Orders returns the order repository view of the store.
func (s *Store) Orders() repository.OrderRepository { return &orderRepo{s: s} }

// Profiles returns the profile repository view of the store.
func (s *Store) Profiles() repository.ProfileRepository { return &profileRepo{s: s} }

// Posts returns the post repository view of the store.
func (s *Store) Posts() repository.PostRepository { return &postRepo{s: s} }

var _ repository.Transactor = (*Store)(nil)

// Ping satisfies readiness checks; the store is always reachable.
func (s *Store) Ping(context.Context) error {
	return nil
}
