package migration

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/entity"
)

// Module provides the schema initialiser to Fx.
var Module = fx.Provide(New)

// models lists every table owned by the order store.
var models = []any{
	(*entity.Order)(nil),
}

// Migrator ensures the order store schema exists.
type Migrator struct {
	db     *bun.DB
	logger *zap.Logger
}

// New constructs a Migrator over the order store connection.
func New(db *bun.DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// Up creates missing tables. It is idempotent and safe to run before every
// command; existing tables are never altered.
func (m *Migrator) Up(ctx context.Context) error {
	for _, model := range models {
		q := m.db.NewCreateTable().Model(model).IfNotExists()
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table %s: %w", q.GetTableName(), err)
		}
	}

	m.logger.Debug("order store schema ready", zap.Int("tables", len(models)))

	return nil
}
