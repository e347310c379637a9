// Package activity records tenant activity timestamps off the request path.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/metrics"
	"github.com/fleetmanage/fleetmanage/internal/fleetsrv/tenancy"
	"github.com/rs/zerolog/log"
)

type Store interface {
	TouchActivity(ctx context.Context, id tenancy.TenantID, at time.Time) error
}

type Options struct {
	QueueSize int
	Workers   int
	// Timeout bounds each update. Updates never inherit a request context.
	Timeout time.Duration
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Recorder applies activity updates with a fixed set of workers. Touch never
// blocks: a tenant that is already queued is not queued again, and updates
// arriving while the queue is full are dropped.
type Recorder struct {
	store Store
	opts  Options
	queue chan tenancy.TenantID

	mu      sync.Mutex
	pending map[tenancy.TenantID]time.Time
	closed  bool
	wg      sync.WaitGroup
}

// New returns a running recorder.
func New(store Store, opts Options) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	r := &Recorder{
		store:   store,
		opts:    opts,
		queue:   make(chan tenancy.TenantID, opts.QueueSize),
		pending: make(map[tenancy.TenantID]time.Time),
	}
	for i := 0; i < opts.Workers; i++ {
		r.wg.Add(1)
		go r.work()
	}
	return r
}

// Touch schedules an update of id's last activity to now.
func (r *Recorder) Touch(id tenancy.TenantID) {
	if id.IsNil() {
		return
	}
	now := r.opts.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if _, ok := r.pending[id]; ok {
		r.pending[id] = now
		r.opts.Metrics.ActivityUpdate("coalesced")
		return
	}
	select {
	case r.queue <- id:
		r.pending[id] = now
	default:
		log.Debug().Str("tenant_id", id.String()).Msg("activity queue full, update dropped")
		r.opts.Metrics.ActivityUpdate("dropped")
	}
}

// Stop refuses further updates and waits until the queued ones are applied.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Recorder) work() {
	defer r.wg.Done()
	for id := range r.queue {
		r.mu.Lock()
		at := r.pending[id]
		delete(r.pending, id)
		r.mu.Unlock()
		r.apply(id, at)
	}
}

func (r *Recorder) apply(id tenancy.TenantID, at time.Time) {
	logger := log.With().Str("tenant_id", id.String()).Logger()
	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background()), r.opts.Timeout)
	defer cancel()

	if err := r.store.TouchActivity(ctx, id, at); err != nil {
		logger.Warn().Err(err).Msg("failed to update tenant activity")
		r.opts.Metrics.ActivityUpdate("error")
		return
	}
	r.opts.Metrics.ActivityUpdate("ok")
}
