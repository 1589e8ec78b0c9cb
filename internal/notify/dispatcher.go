package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/oggyb/muzz-matchmaker/internal/metrics"
)

// Options tunes the Dispatcher.
type Options struct {
	PoolSize int
	Rate     float64 // events per second
	Burst    int
	Timeout  time.Duration
}

// Dispatcher hands events to a worker pool and delivers them through sink.
//
// Each delivery waits on a shared rate limiter and runs inside a circuit
// breaker, so a dead broker costs one fast failure per event instead of a
// timeout. Notify only fails when the pool cannot accept more work.
type Dispatcher struct {
	sink    Notifier
	pool    *ants.Pool
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewDispatcher starts the worker pool. Call Close to drain it.
func NewDispatcher(sink Notifier, opts Options, log *slog.Logger, m *metrics.Metrics) (*Dispatcher, error) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	d := &Dispatcher{
		sink:    sink,
		limiter: rate.NewLimiter(limit, opts.Burst),
		timeout: opts.Timeout,
		log:     log,
		metrics: m,
	}

	d.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	pool, err := ants.NewPool(opts.PoolSize,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			log.Error("notification task panic", "panic", p, "stack", string(debug.Stack()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("notify pool: %w", err)
	}
	d.pool = pool
	return d, nil
}

// Notify queues ev and returns immediately.
func (d *Dispatcher) Notify(_ context.Context, ev Event) error {
	err := d.pool.Submit(func() { d.deliver(ev) })
	if err != nil {
		d.metrics.Notification(string(ev.Kind), "dropped")
		return fmt.Errorf("queue notification: %w", err)
	}
	return nil
}

// deliver runs on a pool worker with its own deadline; the request that
// produced ev may already be gone.
func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.limiter.Wait(ctx); err != nil {
		d.fail(ev, err)
		return
	}

	_, err := d.breaker.Execute(func() (interface{}, error) {
		return nil, d.sink.Notify(ctx, ev)
	})
	if err != nil {
		d.fail(ev, err)
		return
	}
	d.metrics.Notification(string(ev.Kind), "sent")
}

func (d *Dispatcher) fail(ev Event, err error) {
	d.metrics.Notification(string(ev.Kind), "failed")
	level := slog.LevelWarn
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		level = slog.LevelDebug
	}
	d.log.Log(context.Background(), level, "notification failed",
		"id", ev.ID.String(),
		"kind", string(ev.Kind),
		"recipient", ev.Recipient,
		"err", err,
	)
}

// Close waits up to timeout for queued deliveries, then stops the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	return d.pool.ReleaseTimeout(timeout)
}
