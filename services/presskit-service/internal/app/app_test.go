package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locotek/presskit/internal/models"
	"github.com/locotek/presskit/services/presskit-service/internal/api"
	"github.com/locotek/presskit/services/presskit-service/internal/config"
	"github.com/locotek/presskit/services/presskit-service/internal/form"
	"github.com/locotek/presskit/services/presskit-service/internal/notify"
	"github.com/locotek/presskit/services/presskit-service/internal/store"
	"github.com/locotek/presskit/services/presskit-service/internal/submission"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		Server: config.Server{
			Port:         3000,
			UploadsDir:   filepath.Join(dir, "public", "uploads"),
			MaxBodyBytes: 1 << 10,
		},
		PressKit: config.PressKit{DownloadURL: config.DefaultDownloadURL},
		Storage: config.Storage{
			FilePath: filepath.Join(dir, "data", "emails.json"),
			RedisKey: "presskit:emails",
		},
		Notify: config.Notify{
			Sender:     config.DefaultSender,
			KafkaTopic: "presskit.leads",
		},
	}
}

func TestBuildStoresFileOnly(t *testing.T) {
	fan, closeAll, err := buildStores(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer closeAll()

	assert.Equal(t, []string{"file"}, fan.Names())
}

func TestBuildStoresWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Storage.RedisURL = "redis://" + mr.Addr()

	fan, closeAll, err := buildStores(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer closeAll()
	assert.Equal(t, []string{"file", "redis"}, fan.Names())

	rec := models.NewSubmission(uuidFor(1), "fan@example.com", time.Now(), models.Metadata{})
	require.NoError(t, fan.Append(context.Background(), rec))

	members, err := mr.ZMembers("presskit:emails")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestBuildStoresUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(t)
	cfg.Storage.RedisURL = "redis://" + addr

	_, _, err := buildStores(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "failed to reach redis")
}

func TestBuildStoresRequiresOne(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.FilePath = ""

	_, _, err := buildStores(context.Background(), cfg, zerolog.Nop())
	assert.ErrorIs(t, err, errNoStore)
}

func TestBuildNotifier(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		check  func(*testing.T, notify.Notifier)
	}{
		{
			name:   "nothing configured",
			modify: func(*config.Config) {},
			check: func(t *testing.T, n notify.Notifier) {
				assert.IsType(t, &notify.Noop{}, n)
			},
		},
		{
			name: "api key without recipient",
			modify: func(c *config.Config) {
				c.Notify.ResendAPIKey = "re_test"
			},
			check: func(t *testing.T, n notify.Notifier) {
				assert.IsType(t, &notify.Noop{}, n)
			},
		},
		{
			name: "resend",
			modify: func(c *config.Config) {
				c.Notify.ResendAPIKey = "re_test"
				c.Notify.Recipient = "ops@locotek.ca"
			},
			check: func(t *testing.T, n notify.Notifier) {
				assert.IsType(t, &notify.Resend{}, n)
			},
		},
		{
			name: "kafka",
			modify: func(c *config.Config) {
				c.Notify.KafkaBrokers = []string{"localhost:9092"}
			},
			check: func(t *testing.T, n notify.Notifier) {
				assert.IsType(t, &notify.Kafka{}, n)
			},
		},
		{
			name: "resend and kafka",
			modify: func(c *config.Config) {
				c.Notify.ResendAPIKey = "re_test"
				c.Notify.Recipient = "ops@locotek.ca"
				c.Notify.KafkaBrokers = []string{"localhost:9092"}
			},
			check: func(t *testing.T, n notify.Notifier) {
				multi, ok := n.(notify.Multi)
				require.True(t, ok)
				assert.Len(t, multi, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.modify(&cfg)

			n, closeAll := buildNotifier(cfg, zerolog.Nop())
			defer closeAll()
			tt.check(t, n)
		})
	}
}

func TestEnsureDirs(t *testing.T) {
	cfg := testConfig(t)

	dirs, err := ensureDirs(cfg)
	require.NoError(t, err)
	assert.Len(t, dirs, 2)

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestPrintLeads(t *testing.T) {
	cfg := testConfig(t)
	fs := store.NewFile(cfg.Storage.FilePath)

	var empty bytes.Buffer
	require.NoError(t, printLeads(context.Background(), fs, &empty))
	assert.JSONEq(t, `[]`, empty.String())

	at := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Append(context.Background(), models.NewSubmission(uuidFor(1), "first@example.com", at, models.Metadata{})))
	require.NoError(t, fs.Append(context.Background(), models.NewSubmission(uuidFor(2), "second@example.com", at.Add(time.Second), models.Metadata{})))

	var out bytes.Buffer
	require.NoError(t, printLeads(context.Background(), fs, &out))

	var records []models.Submission
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "first@example.com", records[0].Email)
	assert.Equal(t, "second@example.com", records[1].Email)
}

func newSite(t *testing.T) (*httptest.Server, *store.File) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	_, err := ensureDirs(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Server.UploadsDir, "PressKit.zip"), []byte("archive"), 0o644))

	fs := store.NewFile(cfg.Storage.FilePath)
	svc := submission.NewService(fs, notify.NewNoop(zerolog.Nop()), cfg.PressKit.DownloadURL)
	router := api.NewRouter(api.RouterConfig{UploadsDir: cfg.Server.UploadsDir, MaxBodyBytes: cfg.Server.MaxBodyBytes}, api.NewHandlers(svc), zerolog.Nop())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, fs
}

func TestRunDownload(t *testing.T) {
	srv, fs := newSite(t)
	out := t.TempDir()

	var log bytes.Buffer
	err := runDownload(context.Background(), &log, downloadOptions{
		endpoint: srv.URL,
		email:    "Fan@Example.com",
		outDir:   out,
		timeout:  5 * time.Second,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(out, form.DownloadFilename))
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))

	assert.Contains(t, log.String(), "state: loading")
	assert.Contains(t, log.String(), "state: success")
	assert.Contains(t, log.String(), "state: idle")

	records, err := fs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fan@example.com", records[0].Email)
}

func TestRunDownloadRejected(t *testing.T) {
	srv, _ := newSite(t)

	var log bytes.Buffer
	err := runDownload(context.Background(), &log, downloadOptions{
		endpoint: srv.URL,
		email:    "not-an-email",
		outDir:   t.TempDir(),
		timeout:  5 * time.Second,
	})
	assert.ErrorContains(t, err, "Invalid email format")
	assert.Contains(t, log.String(), "state: error")
}

func uuidFor(n byte) uuid.UUID {
	var id uuid.UUID
	id[15] = n
	return id
}
