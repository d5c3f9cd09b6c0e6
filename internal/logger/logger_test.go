package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Additional-Code/shopkit/internal/config"
)

func TestBuildLevels(t *testing.T) {
	tests := []struct {
		level    string
		encoding string
		enabled  zapcore.Level
		disabled zapcore.Level
	}{
		{"debug", "json", zapcore.DebugLevel, zapcore.InvalidLevel},
		{"warn", "console", zapcore.WarnLevel, zapcore.InfoLevel},
		{"bogus", "json", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.encoding, func(t *testing.T) {
			log, err := Build(config.Observability{
				ServiceName: "shopkit",
				LogLevel:    tt.level,
				LogEncoding: tt.encoding,
			})
			require.NoError(t, err)

			assert.True(t, log.Core().Enabled(tt.enabled))
			if tt.disabled != zapcore.InvalidLevel {
				assert.False(t, log.Core().Enabled(tt.disabled))
			}
		})
	}
}
