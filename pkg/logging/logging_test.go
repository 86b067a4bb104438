package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.level, false)
		require.NoError(t, err, tt.level)
		assert.True(t, logger.Core().Enabled(tt.want), tt.level)
		if tt.want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(tt.want-1), tt.level)
		}
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("loud", true)
	assert.Error(t, err)
	assert.NotNil(t, Must("loud", true))
}

func TestNewWritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pianosteps.log")
	logger, err := New("info", false, path)
	require.NoError(t, err)
	logger.Info("song loaded")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "song loaded")
}
