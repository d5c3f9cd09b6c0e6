package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

// Default backing files used when neither flags nor environment name one.
const (
	DefaultOrdersDSN     = "orders.db"
	DefaultCustomersFile = "customers.csv"
)

// Orders configures the relational order store.
type Orders struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

// Customers configures the CSV customer ledger.
type Customers struct {
	LedgerFile string
}

// Images configures the product image pipeline.
type Images struct {
	Width      int
	Height     int
	Quality    int
	Extensions []string
	Workers    int
}

// Observability contains logging, tracing, and metrics configuration.
type Observability struct {
	ServiceName     string
	Environment     string
	LogLevel        string
	LogEncoding     string
	EnableTracing   bool
	TraceExporter   string
	TraceEndpoint   string
	TraceInsecure   bool
	MetricsExporter string
	MetricsTextfile string
}

// Config wraps all application configuration knobs.
type Config struct {
	Orders        Orders
	Customers     Customers
	Images        Images
	Observability Observability
}

// Module wires the configuration loader into the Fx graph.
var Module = fx.Provide(New)

var loadEnvOnce sync.Once

// New builds a Config from environment variables or defaults.
func New() (Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})

	cfg := Config{
		Orders: Orders{
			Driver:          getEnv("SHOPKIT_ORDERS_DRIVER", "sqlite"),
			DSN:             getEnv("SHOPKIT_ORDERS_DSN", DefaultOrdersDSN),
			MaxOpenConns:    getEnvAsInt("SHOPKIT_ORDERS_MAX_OPEN_CONNS", 1),
			MaxIdleConns:    getEnvAsInt("SHOPKIT_ORDERS_MAX_IDLE_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("SHOPKIT_ORDERS_MAX_CONN_LIFETIME", 0),
		},
		Customers: Customers{
			LedgerFile: getEnv("SHOPKIT_CUSTOMERS_FILE", DefaultCustomersFile),
		},
		Images: Images{
			Width:      getEnvAsInt("SHOPKIT_IMAGE_WIDTH", 800),
			Height:     getEnvAsInt("SHOPKIT_IMAGE_HEIGHT", 800),
			Quality:    getEnvAsInt("SHOPKIT_IMAGE_QUALITY", 95),
			Extensions: getEnvAsStringSlice("SHOPKIT_IMAGE_EXTENSIONS", []string{".jpg", ".jpeg", ".png", ".webp"}),
			Workers:    getEnvAsInt("SHOPKIT_IMAGE_WORKERS", 1),
		},
		Observability: Observability{
			ServiceName:     getEnv("SHOPKIT_SERVICE_NAME", "shopkit"),
			Environment:     getEnv("SHOPKIT_ENVIRONMENT", "local"),
			LogLevel:        getEnv("SHOPKIT_LOG_LEVEL", "warn"),
			LogEncoding:     getEnv("SHOPKIT_LOG_ENCODING", "console"),
			EnableTracing:   getEnvAsBool("SHOPKIT_ENABLE_TRACING", false),
			TraceExporter:   getEnv("SHOPKIT_TRACE_EXPORTER", "stdout"),
			TraceEndpoint:   getEnv("SHOPKIT_OTLP_ENDPOINT", "localhost:4317"),
			TraceInsecure:   getEnvAsBool("SHOPKIT_OTLP_INSECURE", true),
			MetricsExporter: getEnv("SHOPKIT_METRICS_EXPORTER", "none"),
			MetricsTextfile: getEnv("SHOPKIT_METRICS_TEXTFILE", "shopkit.prom"),
		},
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, errorbank.Validation("invalid configuration", errorbank.WithCause(err))
	}
	return cfg, nil
}

func (cfg *Config) normalize() error {
	cfg.Orders.Driver = strings.ToLower(strings.TrimSpace(cfg.Orders.Driver))
	switch cfg.Orders.Driver {
	case "sqlite", "postgres", "mysql":
		// supported
	default:
		return fmt.Errorf("unsupported orders driver: %s", cfg.Orders.Driver)
	}
	if cfg.Orders.DSN == "" {
		return fmt.Errorf("missing SHOPKIT_ORDERS_DSN")
	}
	if cfg.Customers.LedgerFile == "" {
		return fmt.Errorf("missing SHOPKIT_CUSTOMERS_FILE")
	}

	if cfg.Images.Width <= 0 || cfg.Images.Height <= 0 {
		return fmt.Errorf("invalid image dimensions: %dx%d", cfg.Images.Width, cfg.Images.Height)
	}
	if cfg.Images.Quality <= 0 || cfg.Images.Quality > 100 {
		cfg.Images.Quality = 95
	}
	for i, ext := range cfg.Images.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Images.Extensions[i] = ext
	}

	cfg.Observability.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Observability.LogLevel))
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "warn"
	}
	cfg.Observability.LogEncoding = strings.ToLower(strings.TrimSpace(cfg.Observability.LogEncoding))
	if cfg.Observability.LogEncoding == "" {
		cfg.Observability.LogEncoding = "console"
	}
	cfg.Observability.TraceExporter = strings.ToLower(strings.TrimSpace(cfg.Observability.TraceExporter))
	if cfg.Observability.TraceExporter == "" {
		cfg.Observability.TraceExporter = "stdout"
	}
	cfg.Observability.MetricsExporter = strings.ToLower(strings.TrimSpace(cfg.Observability.MetricsExporter))
	switch cfg.Observability.MetricsExporter {
	case "":
		cfg.Observability.MetricsExporter = "none"
	case "none", "stdout":
		// supported
	case "prometheus":
		if cfg.Observability.MetricsTextfile == "" {
			return fmt.Errorf("SHOPKIT_METRICS_TEXTFILE must be set for prometheus metrics")
		}
	default:
		return fmt.Errorf("unsupported metrics exporter: %s", cfg.Observability.MetricsExporter)
	}

	return nil
}
