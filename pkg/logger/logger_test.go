package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "", Truncate("abc", 0))
	assert.Equal(t, "abc", Truncate("  abc  ", 5))
	assert.Equal(t, "héll...", Truncate("héllo world", 4))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))

	core, observed := observer.New(zapcore.InfoLevel)
	l := zap.New(core)
	OrNop(l).Info("kept", zap.String(FieldInterviewID, "abc"))

	entries := observed.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "abc", entries[0].ContextMap()[FieldInterviewID])
	}
}

func TestNew(t *testing.T) {
	l, err := New(true, true)
	assert.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
