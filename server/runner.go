package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/inscription-c/ordinals/index"
	"github.com/inscription-c/ordinals/internal/log"
	"github.com/inscription-c/ordinals/internal/sentry"
	"github.com/lightningnetwork/lnd/ticker"
)

type Options struct {
	idx    *index.Indexer
	ticker ticker.Ticker
	log    btclog.Logger
}

type Option func(*Options)

func WithIndex(idx *index.Indexer) func(*Options) {
	return func(options *Options) {
		options.idx = idx
	}
}

// WithPollInterval polls the node every interval.
func WithPollInterval(interval time.Duration) func(*Options) {
	return func(options *Options) {
		options.ticker = ticker.New(interval)
	}
}

func WithTicker(t ticker.Ticker) func(*Options) {
	return func(options *Options) {
		options.ticker = t
	}
}

// Runner keeps the index at the node's tip until stopped or until the index
// reports an error it cannot recover from.
type Runner struct {
	opts *Options

	ctx     context.Context
	cancel  context.CancelFunc
	quit    chan struct{}
	done    chan struct{}
	start   sync.Once
	stop    sync.Once
	started bool

	mu  sync.Mutex
	err error
}

func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		opts: &Options{log: log.Srv},
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	for _, v := range opts {
		v(r.opts)
	}
	if r.opts.idx == nil {
		return nil, errors.New("runner index is nil")
	}
	if r.opts.ticker == nil {
		return nil, errors.New("runner ticker is nil")
	}
	r.ctx, r.cancel = context.WithCancel(context.Background())
	return r, nil
}

func (r *Runner) Start() {
	r.start.Do(func() {
		r.started = true
		go r.run()
	})
}

func (r *Runner) run() {
	defer close(r.done)
	defer sentry.RecoverPanic()

	r.opts.ticker.Resume()
	defer r.opts.ticker.Stop()

	if !r.update() {
		return
	}
	for {
		select {
		case <-r.opts.ticker.Ticks():
			if !r.update() {
				return
			}
		case <-r.quit:
			return
		}
	}
}

// update reports whether polling should continue.
func (r *Runner) update() bool {
	err := r.opts.idx.UpdateIndex(r.ctx)
	switch {
	case err == nil:
		return true
	case errors.Is(err, context.Canceled):
		return false
	case index.IsKind(err, index.KindConsensus),
		index.IsKind(err, index.KindConsistency),
		index.IsKind(err, index.KindReorg):
		r.opts.log.Criticalf("Indexing halted: %v", err)
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		return false
	default:
		r.opts.log.Errorf("UpdateIndex: %v", err)
		return true
	}
}

// Err returns the error that halted indexing, if any.
func (r *Runner) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Done is closed once the runner stopped polling.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Stop lets the block in progress finish and waits for the runner to exit.
func (r *Runner) Stop() {
	r.stop.Do(func() {
		r.cancel()
		close(r.quit)
	})
	r.start.Do(func() {})
	if r.started {
		<-r.done
	}
}
