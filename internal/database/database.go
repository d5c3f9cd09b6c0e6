package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/schema"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/shopkit/internal/config"
)

// Module registers the order store connection with Fx.
var Module = fx.Provide(New)

// New opens the order store backed by Bun. The connection is verified on
// start, which for SQLite also creates the backing file.
func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*bun.DB, error) {
	db, err := Open(cfg.Orders, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := pingContext(ctx, db); err != nil {
				return fmt.Errorf("open order store %s: %w", cfg.Orders.DSN, err)
			}
			logger.Debug("order store connected",
				zap.String("driver", cfg.Orders.Driver),
				zap.String("dsn", cfg.Orders.DSN),
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				return fmt.Errorf("close order store: %w", err)
			}
			return nil
		},
	})

	return db, nil
}

// Open builds a Bun handle without lifecycle wiring.
func Open(cfg config.Orders, logger *zap.Logger) (*bun.DB, error) {
	dial, err := selectDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := openSQLDB(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open order store: %w", err)
	}
	applyPoolSettings(sqlDB, cfg)

	db := bun.NewDB(sqlDB, dial)
	if logger != nil {
		db.AddQueryHook(queryLogger{logger: logger})
	}
	return db, nil
}

func selectDialect(driver string) (schema.Dialect, error) {
	switch driver {
	case "postgres":
		return pgdialect.New(), nil
	case "mysql":
		return mysqldialect.New(), nil
	case "sqlite":
		return sqlitedialect.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func openSQLDB(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("empty DSN")
	}

	switch driver {
	case "postgres":
		connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
		return sql.OpenDB(connector), nil
	case "mysql":
		return sql.Open("mysql", dsn)
	case "sqlite":
		return sql.Open("sqlite3", sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// sqliteDSN adds a busy timeout so a second invocation waits on the file lock
// instead of failing immediately.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_busy_timeout") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000"
}

func applyPoolSettings(db *sql.DB, cfg config.Orders) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
}

func pingContext(ctx context.Context, db *bun.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.DB.PingContext(pingCtx)
}

// queryLogger reports every statement at debug level.
type queryLogger struct {
	logger *zap.Logger
}

func (q queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (q queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	fields := []zap.Field{
		zap.String("query", event.Query),
		zap.Duration("duration", time.Since(event.StartTime)),
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		q.logger.Warn("order store query failed", append(fields, zap.Error(event.Err))...)
		return
	}
	q.logger.Debug("order store query", fields...)
}
