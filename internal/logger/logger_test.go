package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/naka-gawa/oss-stats/internal/config"
)

func TestNew(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           config.LogConfig
		verbose       bool
		expectedLevel zapcore.Level
	}{
		{name: "json info", cfg: config.LogConfig{Level: "info", Format: "json"}, expectedLevel: zapcore.InfoLevel},
		{name: "console warn", cfg: config.LogConfig{Level: "warn", Format: "console"}, expectedLevel: zapcore.WarnLevel},
		{name: "verbose forces debug", cfg: config.LogConfig{Level: "error", Format: "json"}, verbose: true, expectedLevel: zapcore.DebugLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.cfg, tc.verbose)
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, tc.expectedLevel, log.Level())
		})
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "json"}, false)
	assert.Error(t, err)
}
