package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/locotek/presskit/services/presskit-service/internal/api"
	"github.com/locotek/presskit/services/presskit-service/internal/logging"
	"github.com/locotek/presskit/services/presskit-service/internal/submission"
	"github.com/locotek/presskit/services/presskit-service/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the press-kit HTTP service",
	Long:  "Serves POST /api/presskit, the static press-kit files and /metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				log.Warn().Err(err).Msg("error flushing traces")
			}
		}()

		stores, closeStores, err := buildStores(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStores()

		notifier, closeNotifier := buildNotifier(cfg, logging.Component(log, "notify"))
		defer closeNotifier()

		svc := submission.NewService(stores, notifier, cfg.PressKit.DownloadURL,
			submission.WithNotifyTimeout(cfg.Notify.Timeout),
			submission.WithLogger(logging.Component(log, "submission")),
		)

		if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.NewRouter(api.RouterConfig{
			UploadsDir:   cfg.Server.UploadsDir,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			Metrics:      true,
		}, api.NewHandlers(svc), logging.Component(log, "http"))

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe()
		}()

		log.Info().
			Str("addr", srv.Addr).
			Strs("stores", stores.Names()).
			Bool("tracing", cfg.Tracing.Endpoint != "").
			Msg("press-kit service started")

		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down gracefully")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				return fmt.Errorf("failed to shut down http server: %w", err)
			}
			return nil
		case err := <-errChan:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("http server: %w", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
