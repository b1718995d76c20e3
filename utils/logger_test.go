package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerUsableBeforeInit(t *testing.T) {
	require.NotNil(t, Logger)
	require.NotNil(t, Sugar)

	assert.NotPanics(t, func() {
		Sugar.Warnf("pre-init warning %d", 1)
		Logger.Info("pre-init info")
	})
}
