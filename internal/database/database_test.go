package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/config"
)

func TestSqliteDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"orders.db", "orders.db?_busy_timeout=5000"},
		{"file:orders.db?cache=shared", "file:orders.db?cache=shared&_busy_timeout=5000"},
		{"orders.db?_busy_timeout=10", "orders.db?_busy_timeout=10"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestOpenSqliteCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")

	db, err := Open(config.Orders{Driver: "sqlite", DSN: path, MaxOpenConns: 1}, zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, pingContext(context.Background(), db))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Orders{Driver: "oracle", DSN: "x"}, nil)
	assert.Error(t, err)

	_, err = Open(config.Orders{Driver: "sqlite", DSN: ""}, nil)
	assert.Error(t, err)
}
