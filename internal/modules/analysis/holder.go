package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/neertrack/internal/modules/commentary"
	"github.com/aristath/neertrack/internal/modules/dataset"
	"github.com/rs/zerolog"
)

// Holder publishes the current Context. Readers take one pointer per request
// and never observe a partially built snapshot.
type Holder struct {
	current atomic.Pointer[Context]
}

// NewHolder returns a holder publishing initial.
func NewHolder(initial *Context) *Holder {
	h := &Holder{}
	h.current.Store(initial)
	return h
}

// Current returns the published snapshot.
func (h *Holder) Current() *Context {
	return h.current.Load()
}

// Swap publishes next and returns the previous snapshot.
func (h *Holder) Swap(next *Context) *Context {
	return h.current.Swap(next)
}

// ReloadObserver is told about every reload attempt.
type ReloadObserver interface {
	ObserveReload(duration time.Duration, err error)
}

// Reloader rebuilds the snapshot from the configured sources.
type Reloader struct {
	loader   *dataset.Loader
	catalog  *commentary.Catalog
	opts     Options
	holder   *Holder
	observer ReloadObserver
	log      zerolog.Logger

	mu sync.Mutex // one rebuild at a time
}

// NewReloader creates a reloader. observer may be nil.
func NewReloader(loader *dataset.Loader, catalog *commentary.Catalog, opts Options, holder *Holder, observer ReloadObserver, log zerolog.Logger) *Reloader {
	return &Reloader{
		loader:   loader,
		catalog:  catalog,
		opts:     opts,
		holder:   holder,
		observer: observer,
		log:      log.With().Str("component", "reloader").Logger(),
	}
}

// Reload loads the sources, builds a new snapshot and publishes it. On
// failure the current snapshot stays in place.
func (r *Reloader) Reload(ctx context.Context) (*Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	next, err := r.rebuild(ctx)
	if r.observer != nil {
		r.observer.ObserveReload(time.Since(start), err)
	}
	if err != nil {
		r.log.Error().Err(err).Msg("Snapshot reload failed, keeping current snapshot")
		return nil, err
	}

	prev := r.holder.Swap(next)
	ev := r.log.Info().
		Str("snapshot_id", next.ID).
		Int("weekly_rows", len(next.Dataset.Weekly)).
		Dur("duration", time.Since(start))
	if prev != nil {
		ev = ev.Str("previous_snapshot_id", prev.ID)
	}
	ev.Msg("Snapshot reloaded")

	return next, nil
}

func (r *Reloader) rebuild(ctx context.Context) (*Context, error) {
	ds, err := r.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Build(ds, r.catalog, r.opts, r.log)
}
