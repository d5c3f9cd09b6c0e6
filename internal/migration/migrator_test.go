package migration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/config"
	"github.com/Additional-Code/shopkit/internal/database"
)

func TestUpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(config.Orders{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "orders.db"),
		MaxOpenConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	mig := New(db, zap.NewNop())
	require.NoError(t, mig.Up(ctx))
	require.NoError(t, mig.Up(ctx))

	var columns []struct {
		Name string `bun:"name"`
	}
	require.NoError(t, db.NewRaw("SELECT name FROM pragma_table_info('orders') ORDER BY cid").Scan(ctx, &columns))

	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "customer_name", "product", "amount", "status", "created_at"}, names)
}
