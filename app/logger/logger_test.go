package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("tracker", "debug", &buf)

	WithRequestID(log, "req-1").Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "tracker", entry["service"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Contains(t, entry, "ts")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewWithOutput_BadLevelFallsBackToInfo(t *testing.T) {
	log := NewWithOutput("tracker", "loud", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestWithRequestID_Empty(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("tracker", "info", &buf)

	WithRequestID(log, "").Info("no id")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "request_id")
}
