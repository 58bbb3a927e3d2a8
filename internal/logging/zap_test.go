package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	tests := map[string]bool{
		"debug": true,
		"info":  false,
		"warn":  false,
		"bogus": false,
		"error": false,
	}

	for level, debugEnabled := range tests {
		t.Run(level, func(t *testing.T) {
			logger, err := New("prod", level)
			require.NoError(t, err)
			assert.Equal(t, debugEnabled, logger.Core().Enabled(zap.DebugLevel))
			assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
		})
	}
}

func TestNew_ErrorLevelHidesInfo(t *testing.T) {
	logger, err := New("dev", "error")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
}
