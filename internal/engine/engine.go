// Package engine implements browsing and the like/skip/block/match rules on
// top of the store interfaces.
package engine

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/oggyb/muzz-matchmaker/internal/config"
	"github.com/oggyb/muzz-matchmaker/internal/logger"
	"github.com/oggyb/muzz-matchmaker/internal/notify"
)

const (
	DefaultSkipTTL      = 7 * 24 * time.Hour
	DefaultOnlineWindow = 15 * time.Minute
)

// Engine holds no mutable state of its own; every invariant lives in the stores.
type Engine struct {
	profiles   ProfileStore
	likes      LikeStore
	skips      SkipStore
	blocks     BlockStore
	matches    MatchStore
	candidates CandidateStore
	stats      StatsStore

	policy       Policy
	skipTTL      time.Duration
	onlineWindow time.Duration
	notifier     notify.Notifier
	log          *slog.Logger
	now          func() time.Time
	intn         func(n int) int
}

type Option func(*Engine)

func WithPolicy(p Policy) Option { return func(e *Engine) { e.policy = p } }

func WithSkipTTL(d time.Duration) Option { return func(e *Engine) { e.skipTTL = d } }

func WithOnlineWindow(d time.Duration) Option { return func(e *Engine) { e.onlineWindow = d } }

func WithNotifier(n notify.Notifier) Option { return func(e *Engine) { e.notifier = n } }

func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithRand replaces the tie-break source; intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option { return func(e *Engine) { e.intn = intn } }

// WithConfig applies the engine section of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		e.policy = Policy{
			Cooldown: cfg.Engine.BrowseCooldown,
			Window:   cfg.Engine.BrowseWindow,
			Quota:    cfg.Engine.BrowseQuota,
		}
		e.skipTTL = cfg.Engine.SkipTTL
		e.onlineWindow = cfg.Engine.OnlineWindow
	}
}

func New(s Stores, opts ...Option) *Engine {
	e := &Engine{
		profiles:     s.Profiles,
		likes:        s.Likes,
		skips:        s.Skips,
		blocks:       s.Blocks,
		matches:      s.Matches,
		candidates:   s.Candidates,
		stats:        s.Stats,
		policy:       DefaultPolicy,
		skipTTL:      DefaultSkipTTL,
		onlineWindow: DefaultOnlineWindow,
		now:          time.Now,
		intn:         rand.IntN,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.L()
	}
	return e
}

// Policy returns the active browse limits.
func (e *Engine) Policy() Policy { return e.policy }

func (e *Engine) clock() time.Time { return e.now().UTC() }

// emit hands ev to the notifier. Delivery problems never reach the caller.
func (e *Engine) emit(ctx context.Context, kind notify.Kind, recipient, peer uint64) {
	if e.notifier == nil {
		return
	}
	ev := notify.NewEvent(kind, recipient, peer, e.clock())
	if err := e.notifier.Notify(ctx, ev); err != nil {
		e.log.Warn("notification not queued", "kind", string(kind), "recipient", recipient, logger.Err(err))
	}
}

// requireDistinct rejects self-interaction.
func requireDistinct(a, b uint64) error {
	if a == b {
		return ErrInvalidSelfReference
	}
	return nil
}

// requireRegistered fails with ErrNotRegistered unless every id has a profile.
func (e *Engine) requireRegistered(ctx context.Context, ids ...uint64) error {
	ok, err := e.profiles.Exists(ctx, ids...)
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return ErrNotRegistered
	}
	return nil
}
