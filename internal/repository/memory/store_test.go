package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/repository"
)

func seedUser(ctx context.Context, t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, Username: email, IsActive: true}
	require.NoError(t, s.Users().Create(ctx, user))
	return user
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		user := &domain.User{Email: "a@example.com"}
		require.NoError(t, s.Users().Create(ctx, user))
		require.NoError(t, s.Accounts().Create(ctx, &domain.Account{UserID: user.ID}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, Stats{}, s.Stats())

	// Sequences roll back with the data.
	user := seedUser(context.Background(), t, s, "b@example.com")
	assert.Equal(t, int64(1), user.ID)
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Products().Create(ctx, &domain.Product{Name: "Cola", Type: domain.ProductTypeDrinks}))
			panic("unexpected")
		})
	})
	assert.Zero(t, s.Stats().Products)

	// The mutex was released.
	require.NoError(t, s.Products().Create(ctx, &domain.Product{Name: "Chips", Type: domain.ProductTypeChips}))
}

func TestWithinTxNestedJoinsOuter(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			seedUser(ctx, t, s, "nested@example.com")
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Stats().Users)
}

func TestUserEmailUnique(t *testing.T) {
	s := NewStore()
	seedUser(context.Background(), t, s, "dup@example.com")

	err := s.Users().Create(context.Background(), &domain.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestAccountOnePerUser(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := seedUser(context.Background(), t, s, "acc@example.com")

	require.NoError(t, s.Accounts().Create(ctx, &domain.Account{UserID: user.ID, Balance: decimal.Zero}))
	assert.ErrorIs(t, s.Accounts().Create(ctx, &domain.Account{UserID: user.ID}), repository.ErrConflict)
	assert.ErrorIs(t, s.Accounts().Create(ctx, &domain.Account{UserID: 999}), repository.ErrReferenced)
}

func TestListEntriesNewestFirstWithPaging(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := seedUser(context.Background(), t, s, "ledger@example.com")
	account := &domain.Account{UserID: user.ID}
	require.NoError(t, s.Accounts().Create(ctx, account))

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Accounts().AppendEntry(ctx, &domain.LedgerEntry{
			AccountID: account.ID,
			Kind:      domain.LedgerEntryDeposit,
			Amount:    decimal.NewFromInt(int64(i)),
		}))
	}

	entries, err := s.Accounts().ListEntries(ctx, account.ID, 2, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(3)))

	entries, err = s.Accounts().ListEntries(ctx, account.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(1)))
}

func TestProductDeleteReferencedByOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := seedUser(context.Background(), t, s, "buyer@example.com")
	product := &domain.Product{Name: "Cola", Type: domain.ProductTypeDrinks, Price: decimal.RequireFromString("1.50")}
	require.NoError(t, s.Products().Create(ctx, product))

	order := &domain.Order{UserID: user.ID, Status: domain.OrderStatusPending}
	require.NoError(t, s.Orders().Create(ctx, order))
	require.NoError(t, s.Orders().AddItem(ctx, &domain.OrderItem{OrderID: order.ID, ProductID: product.ID, Price: product.Price, Quantity: 1}))

	assert.ErrorIs(t, s.Products().Delete(ctx, product.ID), repository.ErrReferenced)
	assert.ErrorIs(t, s.Orders().AddItem(ctx, &domain.OrderItem{OrderID: order.ID, ProductID: 42, Quantity: 1}), repository.ErrReferenced)
}

func TestProfileDeleteCascadesPosts(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	user := seedUser(context.Background(), t, s, "writer@example.com")

	profile := &domain.UserProfile{UserID: user.ID, Bio: "hi"}
	require.NoError(t, s.Profiles().Create(ctx, profile))
	assert.Equal(t, "writer@example.com", profile.UserEmail)

	post := &domain.Post{AuthorProfileID: profile.ID, Title: "t", Content: "c"}
	require.NoError(t, s.Posts().Create(ctx, post))

	got, err := s.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.AuthorName)

	require.NoError(t, s.Profiles().Delete(ctx, profile.ID))
	_, err = s.Posts().GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
