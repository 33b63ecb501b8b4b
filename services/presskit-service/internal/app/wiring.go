package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/locotek/presskit/services/presskit-service/internal/config"
	"github.com/locotek/presskit/services/presskit-service/internal/db"
	"github.com/locotek/presskit/services/presskit-service/internal/notify"
	"github.com/locotek/presskit/services/presskit-service/internal/store"
)

var errNoStore = errors.New("no store configured: set storage.file.path, storage.redis.url or database.url")

// buildStores opens every configured backend. The returned func releases
// their connections.
func buildStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*store.Fanout, func(), error) {
	fan := store.NewFanout()
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Storage.FilePath != "" {
		fan.Add("file", store.NewFile(cfg.Storage.FilePath))
	}

	if cfg.Storage.RedisURL != "" {
		r, err := store.NewRedis(cfg.Storage.RedisURL, cfg.Storage.RedisToken, cfg.Storage.RedisKey)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		if err := r.Ping(ctx); err != nil {
			r.Close()
			closeAll()
			return nil, nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		closers = append(closers, func() {
			if err := r.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing redis client")
			}
		})
		fan.Add("redis", r)
	}

	if cfg.Database.URL != "" {
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		fan.Add("postgres", store.NewPostgres(pool))
	}

	if len(fan.Names()) == 0 {
		return nil, nil, errNoStore
	}
	return fan, closeAll, nil
}

// buildNotifier combines the configured notification channels. Without
// any, submissions are accepted silently.
func buildNotifier(cfg config.Config, log zerolog.Logger) (notify.Notifier, func()) {
	var (
		notifiers notify.Multi
		closers   []func()
	)

	if cfg.ResendEnabled() {
		notifiers = append(notifiers, notify.NewResend(cfg.Notify.ResendAPIKey, cfg.Notify.Sender, cfg.Notify.Recipient))
	} else if cfg.Notify.ResendAPIKey != "" {
		log.Warn().Msg("resend api key set without notify.recipient, email alerts disabled")
	}

	if cfg.KafkaEnabled() {
		k := notify.NewKafka(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic)
		notifiers = append(notifiers, k)
		closers = append(closers, func() {
			if err := k.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing kafka writer")
			}
		})
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	switch len(notifiers) {
	case 0:
		return notify.NewNoop(log), closeAll
	case 1:
		return notifiers[0], closeAll
	default:
		return notifiers, closeAll
	}
}

// ensureDirs creates the directories the file store and the static
// press-kit files live in.
func ensureDirs(cfg config.Config) ([]string, error) {
	var dirs []string
	if cfg.Storage.FilePath != "" {
		dirs = append(dirs, filepath.Dir(cfg.Storage.FilePath))
	}
	if cfg.Server.UploadsDir != "" {
		dirs = append(dirs, cfg.Server.UploadsDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return dirs, nil
}
