package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level, format string
		enabled       zap.AtomicLevel
	}{
		{"debug", "console", zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"warn", "json", zap.NewAtomicLevelAt(zap.WarnLevel)},
		{"error", "console", zap.NewAtomicLevelAt(zap.ErrorLevel)},
		{"", "json", zap.NewAtomicLevelAt(zap.InfoLevel)},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			require.NoError(t, err)
			core := logger.Core()
			assert.True(t, core.Enabled(tt.enabled.Level()))
			if tt.enabled.Level() > zap.DebugLevel {
				assert.False(t, core.Enabled(tt.enabled.Level()-1))
			}
		})
	}
}
