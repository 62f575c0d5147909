package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Domenick1991/boatbooking/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info("dropped")
	log.Warn("kept", "trip_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, float64(7), line["trip_id"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New(config.LogConfig{Level: "debug", Format: "text"}, &buf).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
