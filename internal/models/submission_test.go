package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionTimestampHasFixedWidth(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"trailing zero millis", time.Date(2025, 1, 2, 3, 4, 5, 600_000_000, time.UTC), "2025-01-02T03:04:05.600Z"},
		{"whole second", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), "2025-01-02T03:04:05.000Z"},
		{"sub-millisecond dropped", time.Date(2025, 1, 2, 3, 4, 5, 123_456_789, time.UTC), "2025-01-02T03:04:05.123Z"},
		{"non-utc input", time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("EST", -5*3600)), "2025-01-02T08:04:05.000Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewSubmission(uuid.New(), "fan@example.com", tt.at, Metadata{})

			data, err := json.Marshal(rec)
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.Equal(t, tt.want, raw["timestamp"])
			assert.Equal(t, "fan@example.com", raw["email"])
			assert.Equal(t, rec.ID.String(), raw["id"])
		})
	}
}

func TestSubmissionJSONRoundTripKeepsInstant(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 600_000_000, time.UTC)
	rec := NewSubmission(uuid.New(), "fan@example.com", at, Metadata{UserAgent: "Test Browser"})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Submission
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, at.Equal(back.Timestamp))
	assert.Equal(t, rec.ID, back.ID)
	assert.Equal(t, "Test Browser", back.UserAgent)
}
