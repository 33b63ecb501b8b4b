package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", "json", &buf)
	require.NoError(t, err)

	storeLog := Component(log, "store")
	storeLog.Info().Str("email", "test@example.com").Msg("appended")
	log.Debug().Msg("filtered out")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "presskit", entry["service"])
	assert.Equal(t, "appended", entry["message"])
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)
}
