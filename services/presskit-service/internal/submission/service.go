package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/locotek/presskit/internal/models"
	"github.com/locotek/presskit/services/presskit-service/internal/notify"
	"github.com/locotek/presskit/services/presskit-service/internal/store"
	"github.com/locotek/presskit/services/presskit-service/internal/telemetry"
)

// Result is returned for an accepted submission.
type Result struct {
	Record      models.Submission
	DownloadURL string
}

// Service validates submissions, records them and notifies the operator.
type Service struct {
	store         store.Store
	notifier      notify.Notifier
	downloadURL   string
	notifyTimeout time.Duration
	log           zerolog.Logger
	tracer        trace.Tracer

	Now   func() time.Time
	NewID func() uuid.UUID
}

// Option configures a Service.
type Option func(*Service)

// WithNotifyTimeout bounds each notification. Zero disables the bound.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *Service) { s.notifyTimeout = d }
}

// WithLogger sets the logger for side-effect failures and accepted requests.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService creates a service that records to st, alerts through n and
// answers accepted requests with downloadURL.
func NewService(st store.Store, n notify.Notifier, downloadURL string, opts ...Option) *Service {
	s := &Service{
		store:       st,
		notifier:    n,
		downloadURL: downloadURL,
		log:         zerolog.Nop(),
		tracer:      otel.Tracer("github.com/locotek/presskit/submission"),
		Now:         time.Now,
		NewID:       uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit handles one raw request body. Validation failures return a
// *ValidationError before any side effect runs. A store failure returns
// an error wrapping ErrProcessing. Notification failures are only logged.
func (s *Service) Submit(ctx context.Context, body []byte, meta models.Metadata) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "presskit.submit")
	defer span.End()

	req, err := ParseRequest(body)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			telemetry.Submissions.WithLabelValues(telemetry.ResultInvalid).Inc()
			span.SetAttributes(attribute.String("presskit.rejected", ve.Message))
		} else {
			telemetry.Submissions.WithLabelValues(telemetry.ResultFailed).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "parse failed")
		}
		return Result{}, err
	}

	rec := models.NewSubmission(s.NewID(), req.NormalizedEmail(), s.Now(), meta)
	span.SetAttributes(attribute.String("presskit.record_id", rec.ID.String()))

	storeErr := s.runSideEffects(ctx, rec)
	if storeErr != nil {
		telemetry.Submissions.WithLabelValues(telemetry.ResultFailed).Inc()
		span.RecordError(storeErr)
		span.SetStatus(codes.Error, "store failed")
		return Result{}, fmt.Errorf("%w: %w", ErrProcessing, storeErr)
	}

	telemetry.Submissions.WithLabelValues(telemetry.ResultAccepted).Inc()
	s.log.Info().
		Str("record_id", rec.ID.String()).
		Str("email", rec.Email).
		Msg("press kit request accepted")

	return Result{Record: rec, DownloadURL: s.downloadURL}, nil
}

// runSideEffects appends and notifies concurrently and waits for both.
// Neither outcome affects the other; only the store error is returned.
// A client hanging up does not cancel either of them.
func (s *Service) runSideEffects(ctx context.Context, rec models.Submission) error {
	ctx = context.WithoutCancel(ctx)

	var (
		wg       sync.WaitGroup
		storeErr error
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		storeErr = s.append(ctx, rec)
	}()

	go func() {
		defer wg.Done()
		s.notify(ctx, rec)
	}()

	wg.Wait()
	return storeErr
}

func (s *Service) append(ctx context.Context, rec models.Submission) (err error) {
	ctx, span := s.tracer.Start(ctx, "presskit.store.append")
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.SideEffectDuration.WithLabelValues("store").Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store panic: %v", r)
		}
		if err != nil {
			telemetry.StoreFailures.Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, "append failed")
			s.log.Error().Err(err).Str("record_id", rec.ID.String()).Msg("failed to store submission")
		}
	}()

	return s.store.Append(ctx, rec)
}

func (s *Service) notify(ctx context.Context, rec models.Submission) {
	ctx, span := s.tracer.Start(ctx, "presskit.notify")
	defer span.End()

	if s.notifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
	}

	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
		telemetry.SideEffectDuration.WithLabelValues("notify").Observe(time.Since(start).Seconds())
		if err != nil {
			telemetry.NotifyFailures.Inc()
			span.RecordError(err)
			s.log.Warn().Err(err).Str("record_id", rec.ID.String()).Msg("failed to send notification")
		}
	}()

	err = s.notifier.Notify(ctx, rec)
}
