package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSON(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New("test", WithOnlyWriter(buf))
	log.Info("registered", zap.String("event_id", "e1"))

	out := buf.String()
	assert.Contains(t, out, `"message":"registered"`)
	assert.Contains(t, out, `"event_id":"e1"`)
	assert.Contains(t, out, `"env":"test"`)
	assert.Contains(t, out, `"level":"INFO"`)
}

func TestLevelFiltering(t *testing.T) {
	buf := new(bytes.Buffer)
	log := New("prod", WithOnlyWriter(buf))
	log.Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	log = New("prod", WithOnlyWriter(buf), WithLevel(zapcore.DebugLevel))
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
