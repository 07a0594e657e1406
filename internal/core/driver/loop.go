// Package driver runs a scene tree at a fixed tick rate. It owns the
// clock: each tick dispatches scheduled tasks, runs the pre-tick hook,
// then fires the update walk from the root.
package driver

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/banyantree/banyan/internal/core/observability/log"
	"github.com/banyantree/banyan/internal/core/scene"
)

// DefaultTPS is the tick rate used when no option overrides it.
const DefaultTPS = 60

var ErrLoopRunning = errors.New("driver: loop already running")

// Option configures a Loop.
type Option func(*Loop)

// WithTPS sets the tick rate for Run. Non-positive rates are ignored.
func WithTPS(tps int) Option {
	return func(l *Loop) {
		if tps > 0 {
			l.tps = tps
		}
	}
}

func WithLogger(logger log.Log) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithPreTick installs a hook that runs each tick between scheduler
// dispatch and the tree update. Input sampling and replication pumps
// belong here.
func WithPreTick(fn func(tpf float64) error) Option {
	return func(l *Loop) {
		l.preTick = fn
	}
}

// WithUpdateFilter adds a delivery filter applied to every update
// firing.
func WithUpdateFilter(filter scene.Filter) Option {
	return func(l *Loop) {
		if filter != nil {
			l.filters = append(l.filters, filter)
		}
	}
}

// Loop drives one tree. Step and Run must stay on a single goroutine;
// only Ticks is safe to read from outside.
type Loop struct {
	root      *scene.Node
	scheduler *Scheduler
	logger    log.Log
	tps       int
	preTick   func(tpf float64) error
	filters   []scene.Filter
	ticks     atomic.Uint64
	running   atomic.Bool
}

func New(root *scene.Node, opts ...Option) *Loop {
	l := &Loop{
		root:      root,
		scheduler: NewScheduler(),
		logger:    log.Provide(),
		tps:       DefaultTPS,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loop) Root() *scene.Node {
	return l.root
}

func (l *Loop) Scheduler() *Scheduler {
	return l.scheduler
}

// Ticks returns the number of completed ticks.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Step advances the tree by one tick of tpf seconds. Any error is
// fatal to the tick: a failed tick does not count.
func (l *Loop) Step(tpf float64) error {
	l.scheduler.Advance(tpf)
	if l.preTick != nil {
		if err := l.preTick(tpf); err != nil {
			return fmt.Errorf("driver: pre-tick: %w", err)
		}
	}
	if err := l.root.Update(tpf, l.filters...); err != nil {
		return err
	}
	l.ticks.Add(1)
	return nil
}

// Run steps the loop at the configured rate until ctx is done or a
// tick fails. Tick length is measured, so a slow tick stretches the
// next tpf instead of losing time. Cancellation is a clean stop.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	l.logger.Info("Loop started",
		log.String("root", l.root.Name()),
		log.Int("tps", l.tps))

	ticker := time.NewTicker(time.Second / time.Duration(l.tps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Loop stopped",
				log.Uint64("ticks", l.ticks.Load()))
			return nil
		case now := <-ticker.C:
			tpf := now.Sub(last).Seconds()
			last = now
			if err := l.Step(tpf); err != nil {
				l.logger.Error("Tick failed",
					log.Uint64("tick", l.ticks.Load()),
					log.Error(err))
				return err
			}
		}
	}
}
