package order

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/database"
	"github.com/Additional-Code/shopkit/internal/entity"
	"github.com/Additional-Code/shopkit/internal/migration"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := database.Open(config.Orders{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "orders.db"),
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migration.New(db, zap.NewNop()).Up(context.Background()))
	return db
}

func newOrder(customer, product, amount string, status entity.OrderStatus) *entity.Order {
	return &entity.Order{
		CustomerName: customer,
		Product:      product,
		Amount:       decimal.RequireFromString(amount),
		Status:       status,
		CreatedAt:    time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
	}
}

func TestCreateAssignsIncreasingIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	var ids []int64
	for _, product := range []string{"Mug", "Shirt", "Poster"} {
		o := newOrder("Alice", product, "10", entity.OrderStatusPending)
		require.NoError(t, repo.Create(ctx, o))
		ids = append(ids, o.ID)
	}

	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestGetByIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	o := newOrder("Alice", "Mug", "12.50", entity.OrderStatusPending)
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.CustomerName)
	assert.Equal(t, "Mug", got.Product)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, entity.OrderStatusPending, got.Status)
	assert.True(t, got.CreatedAt.Equal(o.CreatedAt))

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	require.NoError(t, repo.Create(ctx, newOrder("A", "p1", "1", entity.OrderStatusPending)))
	require.NoError(t, repo.Create(ctx, newOrder("B", "p2", "2", entity.OrderStatusShipped)))
	require.NoError(t, repo.Create(ctx, newOrder("C", "p3", "3", entity.OrderStatusPending)))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(3), all[2].ID)

	pending, err := repo.List(ctx, entity.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "A", pending[0].CustomerName)
	assert.Equal(t, "C", pending[1].CustomerName)

	completed, err := repo.List(ctx, entity.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, completed)
	assert.NotNil(t, completed)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	o := newOrder("Alice", "Mug", "10", entity.OrderStatusPending)
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, entity.OrderStatusShipped))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, got.Status)
	assert.Equal(t, "Mug", got.Product)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, 42, entity.OrderStatusCompleted), ErrNotFound)
}
