package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/shopkit/pkg/errorbank"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Orders.Driver)
	assert.Equal(t, DefaultOrdersDSN, cfg.Orders.DSN)
	assert.Equal(t, DefaultCustomersFile, cfg.Customers.LedgerFile)
	assert.Equal(t, 800, cfg.Images.Width)
	assert.Equal(t, 800, cfg.Images.Height)
	assert.Equal(t, 95, cfg.Images.Quality)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png", ".webp"}, cfg.Images.Extensions)
	assert.Equal(t, 1, cfg.Images.Workers)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
	assert.Equal(t, "none", cfg.Observability.MetricsExporter)
	assert.False(t, cfg.Observability.EnableTracing)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("SHOPKIT_ORDERS_DSN", "/tmp/shop/orders.db")
	t.Setenv("SHOPKIT_IMAGE_WIDTH", "640")
	t.Setenv("SHOPKIT_IMAGE_EXTENSIONS", "JPG, png")
	t.Setenv("SHOPKIT_LOG_LEVEL", " DEBUG ")
	t.Setenv("SHOPKIT_METRICS_EXPORTER", "Prometheus")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/shop/orders.db", cfg.Orders.DSN)
	assert.Equal(t, 640, cfg.Images.Width)
	assert.Equal(t, []string{".jpg", ".png"}, cfg.Images.Extensions)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
	assert.Equal(t, "prometheus", cfg.Observability.MetricsExporter)
}

func TestNewRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "SHOPKIT_ORDERS_DRIVER", "oracle"},
		{"empty dsn", "SHOPKIT_ORDERS_DSN", ""},
		{"zero width", "SHOPKIT_IMAGE_WIDTH", "0"},
		{"unknown metrics exporter", "SHOPKIT_METRICS_EXPORTER", "statsd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := New()
			assert.True(t, errorbank.Is(err, errorbank.KindValidation), "got %v", err)
		})
	}
}

func TestGetEnvHelpersFallBack(t *testing.T) {
	t.Setenv("SHOPKIT_TEST_INT", "abc")
	t.Setenv("SHOPKIT_TEST_BOOL", "maybe")
	t.Setenv("SHOPKIT_TEST_SLICE", " , ")

	assert.Equal(t, 7, getEnvAsInt("SHOPKIT_TEST_INT", 7))
	assert.True(t, getEnvAsBool("SHOPKIT_TEST_BOOL", true))
	assert.Equal(t, []string{"a"}, getEnvAsStringSlice("SHOPKIT_TEST_SLICE", []string{"a"}))
}
