package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locotek/presskit/internal/models"
)

func testRecord(email string, at time.Time) models.Submission {
	return models.NewSubmission(uuid.New(), email, at, models.Metadata{UserAgent: "Test Browser"})
}

func TestFileAppendCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "emails.json")
	f := NewFile(path)

	rec := testRecord("test@example.com", time.Now())
	require.NoError(t, f.Append(context.Background(), rec))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var stored []map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "test@example.com", stored[0]["email"])
	assert.Equal(t, "Test Browser", stored[0]["userAgent"])
	assert.NotEmpty(t, stored[0]["timestamp"])
	assert.NotContains(t, stored[0], "ip")
}

func TestFileAppendKeepsOrderAndPriorRecords(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "emails.json"))
	ctx := context.Background()
	now := time.Now()

	first := testRecord("first@example.com", now)
	second := testRecord("second@example.com", now.Add(time.Second))

	require.NoError(t, f.Append(ctx, first))
	before, err := f.List(ctx)
	require.NoError(t, err)

	require.NoError(t, f.Append(ctx, second))
	after, err := f.List(ctx)
	require.NoError(t, err)

	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, "first@example.com", after[0].Email)
	assert.Equal(t, "second@example.com", after[1].Email)
	assert.Equal(t, second.ID, after[1].ID)
}

func TestFileListMissingFileIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "absent.json"))

	records, err := f.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileReadsLegacyRecordsWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.json")
	legacy := `[{"email":"old@example.com","timestamp":"2024-05-01T10:00:00.000Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	f := NewFile(path)
	require.NoError(t, f.Append(context.Background(), testRecord("new@example.com", time.Now())))

	records, err := f.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "old@example.com", records[0].Email)
	assert.Equal(t, uuid.Nil, records[0].ID)
}

func TestFileAppendFailsWhenDirectoryCannotBeCreated(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	f := NewFile(filepath.Join(blocker, "data", "emails.json"))
	err := f.Append(context.Background(), testRecord("test@example.com", time.Now()))
	assert.Error(t, err)
}

func TestFileAppendFailsOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	f := NewFile(path)
	err := f.Append(context.Background(), testRecord("test@example.com", time.Now()))
	assert.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data))
}

func TestFileConcurrentAppendsInProcess(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "emails.json"))
	ctx := context.Background()

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			errs <- f.Append(ctx, testRecord("fan@example.com", time.Now()))
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	records, err := f.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, n)
}
