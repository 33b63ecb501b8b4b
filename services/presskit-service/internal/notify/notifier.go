package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/locotek/presskit/internal/models"
)

// Notifier sends a best-effort alert about an accepted submission.
// Errors are reported to the caller for logging only.
type Notifier interface {
	Notify(ctx context.Context, rec models.Submission) error
}

// Noop is used when no notification channel is configured.
type Noop struct {
	log zerolog.Logger
}

// NewNoop creates a notifier that only logs at debug level.
func NewNoop(log zerolog.Logger) *Noop {
	return &Noop{log: log}
}

// Notify logs the skipped notification.
func (n *Noop) Notify(_ context.Context, rec models.Submission) error {
	n.log.Debug().Str("email", rec.Email).Msg("notification skipped, no channel configured")
	return nil
}

// Multi invokes every notifier concurrently under the same context and
// joins their errors in order.
type Multi []Notifier

// Notify waits for every notifier to return.
func (m Multi) Notify(ctx context.Context, rec models.Submission) error {
	errs := make([]error, len(m))

	var wg sync.WaitGroup
	for i, n := range m {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = n.Notify(ctx, rec)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
