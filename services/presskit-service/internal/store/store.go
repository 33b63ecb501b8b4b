package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/locotek/presskit/internal/models"
)

// Store is a durable, append-only collection of submissions.
// Append must not return before the record is durable.
type Store interface {
	Append(ctx context.Context, rec models.Submission) error
}

// Lister is implemented by stores that can read their records back in
// receipt order.
type Lister interface {
	List(ctx context.Context) ([]models.Submission, error)
}

type backend struct {
	name  string
	store Store
}

// Fanout appends every record to all configured backends. The append
// succeeds only when every backend succeeded.
type Fanout struct {
	backends []backend
}

// NewFanout creates an empty fan-out.
func NewFanout() *Fanout { return &Fanout{} }

// Add registers a backend under a name used in error messages.
func (f *Fanout) Add(name string, s Store) *Fanout {
	f.backends = append(f.backends, backend{name: name, store: s})
	return f
}

// Names lists the registered backends in registration order.
func (f *Fanout) Names() []string {
	names := make([]string, 0, len(f.backends))
	for _, b := range f.backends {
		names = append(names, b.name)
	}
	return names
}

// Append writes rec to every backend, even after one has failed.
func (f *Fanout) Append(ctx context.Context, rec models.Submission) error {
	var errs []error
	for _, b := range f.backends {
		if err := b.store.Append(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s store: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// List reads from the first backend that supports listing.
func (f *Fanout) List(ctx context.Context) ([]models.Submission, error) {
	for _, b := range f.backends {
		if l, ok := b.store.(Lister); ok {
			return l.List(ctx)
		}
	}
	return nil, errors.New("no configured store supports listing")
}
