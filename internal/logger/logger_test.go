package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewWithLevel(t *testing.T) {
	lg := NewWith("debug", "")
	assert.True(t, lg.Desugar().Core().Enabled(zap.DebugLevel))

	lg = NewWith("", "console")
	assert.False(t, lg.Desugar().Core().Enabled(zap.DebugLevel))
	assert.True(t, lg.Desugar().Core().Enabled(zap.InfoLevel))
}
