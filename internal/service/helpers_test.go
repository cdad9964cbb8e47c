package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/shop-service/internal/config"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository/memory"
)

type testEnv struct {
	store      *memory.Store
	dispatcher events.Dispatcher
	published  *eventLog
	logs       *observer.ObservedLogs
	auth       *AuthService
	ledger     *LedgerService
	catalog    *CatalogService
	orders     *OrderService
	profiles   *ProfileService
	posts      *PostService
}

type eventLog struct {
	mu     sync.Mutex
	events []events.Event
}

func (l *eventLog) record(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []events.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.EventType, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	published := &eventLog{}
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, published.record)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}}
	return &testEnv{
		store:      store,
		dispatcher: dispatcher,
		published:  published,
		logs:       logs,
		auth: NewAuthService(cfg, AuthDependencies{
			UserRepo:    store.Users(),
			AccountRepo: store.Accounts(),
			Transactor:  store,
		}),
		ledger: NewLedgerService(LedgerDependencies{
			AccountRepo: store.Accounts(),
			Transactor:  store,
			Dispatcher:  dispatcher,
			Logger:      logger,
		}),
		catalog: NewCatalogService(CatalogDependencies{ProductRepo: store.Products()}),
		orders: NewOrderService(OrderDependencies{
			OrderRepo:   store.Orders(),
			ProductRepo: store.Products(),
			UserRepo:    store.Users(),
			Transactor:  store,
			Dispatcher:  dispatcher,
			Logger:      logger,
		}),
		profiles: NewProfileService(ProfileDependencies{ProfileRepo: store.Profiles()}),
		posts:    NewPostService(PostDependencies{PostRepo: store.Posts(), ProfileRepo: store.Profiles()}),
	}
}

func (e *testEnv) register(t *testing.T, email string) *domain.User {
	t.Helper()
	result, err := e.auth.Register(context.Background(), "user", email, "password123")
	require.NoError(t, err)
	return result.User
}

func (e *testEnv) product(t *testing.T, name string, price string) *domain.Product {
	t.Helper()
	product, err := e.catalog.CreateProduct(context.Background(), ProductInput{
		Name:  name,
		Type:  domain.ProductTypeFood,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return product
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeIdempotencyStore struct {
	mu          sync.Mutex
	locks       map[string]bool
	results     map[string]string
	rememberErr error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{locks: map[string]bool{}, results: map[string]string{}}
}

func (f *fakeIdempotencyStore) TryLock(_ context.Context, scope, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.locks[scope+key] {
		return false, nil
	}
	f.locks[scope+key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) Release(_ context.Context, scope, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.locks, scope+key)
	return nil
}

func (f *fakeIdempotencyStore) Remember(_ context.Context, scope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rememberErr != nil {
		return f.rememberErr
	}
	f.results[scope+key] = value
	return nil
}

func (f *fakeIdempotencyStore) Recall(_ context.Context, scope, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.results[scope+key]
	return val, ok, nil
}
