package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("development environment", func(t *testing.T) {
		l := New("debug", "development")
		assert.NotNil(t, l)
		l.Debug("test debug")
		l.Info("test info")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		l := New("nonsense", "production")
		assert.NotNil(t, l)
		l.Info("test info")
	})
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("info", &buf)

	l.WithField("component", "gateway").Infof("fetched %d samples", 40)
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "fetched 40 samples")
	assert.Contains(t, out, `"component":"gateway"`)
	assert.NotContains(t, out, "hidden")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing to see")
	l.WithFields(map[string]interface{}{"a": 1}).Warn("still nothing")
}
