// Package index replays the chain and maintains the sat ranges held by every output.
package index

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/inscription-c/ordinals/constants"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/inscription-c/ordinals/internal/log"
	"github.com/inscription-c/ordinals/internal/metrics"
	"github.com/inscription-c/ordinals/ordinal"
)

// State is the position of the chain head pointer.
type State int32

const (
	StateEmpty State = iota
	StateSynced
	StateReorganizing
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateSynced:
		return "synced"
	case StateReorganizing:
		return "reorganizing"
	default:
		return "unknown"
	}
}

type Options struct {
	store    dao.Store
	schedule *ordinal.Schedule
	cli      BlockSource

	indexSpentSats bool
	maxReorgDepth  uint32
	fetchBatch     uint32
	retryDelay     time.Duration
	log            btclog.Logger
}

type Option func(*Options)

func WithStore(store dao.Store) func(*Options) {
	return func(options *Options) {
		options.store = store
	}
}

func WithSchedule(schedule *ordinal.Schedule) func(*Options) {
	return func(options *Options) {
		options.schedule = schedule
	}
}

func WithClient(cli BlockSource) func(*Options) {
	return func(options *Options) {
		options.cli = cli
	}
}

// WithIndexSpentSats keeps spent outputs, marked spent, instead of deleting them.
func WithIndexSpentSats(indexSpentSats bool) func(*Options) {
	return func(options *Options) {
		options.indexSpentSats = indexSpentSats
	}
}

// WithMaxReorgDepth sets how many recent blocks keep their undo log.
func WithMaxReorgDepth(depth uint32) func(*Options) {
	return func(options *Options) {
		options.maxReorgDepth = depth
	}
}

func WithFetchBatch(n uint32) func(*Options) {
	return func(options *Options) {
		options.fetchBatch = n
	}
}

// WithRetryDelay sets the first backoff delay of block fetch retries.
func WithRetryDelay(d time.Duration) func(*Options) {
	return func(options *Options) {
		options.retryDelay = d
	}
}

func WithLogger(logger btclog.Logger) func(*Options) {
	return func(options *Options) {
		options.log = logger
	}
}

// Indexer owns the index. Ingest and Rollback are serialized; queries read
// snapshots and never wait for a block in progress.
type Indexer struct {
	opts    *Options
	mu      sync.Mutex
	state   atomic.Int32
	metrics *metrics.Indexer
}

func NewIndexer(opts ...Option) (*Indexer, error) {
	idx := &Indexer{
		opts: &Options{
			maxReorgDepth: constants.DefaultMaxReorgDepth,
			fetchBatch:    constants.DefaultFetchBatch,
			retryDelay:    time.Second,
			log:           log.Idx,
		},
	}
	for _, v := range opts {
		v(idx.opts)
	}
	if idx.opts.store == nil {
		return nil, errors.New("indexer store is nil")
	}
	if idx.opts.schedule == nil {
		return nil, errors.New("indexer schedule is nil")
	}
	if idx.opts.maxReorgDepth == 0 {
		return nil, errors.New("max reorg depth must be positive")
	}
	if idx.opts.fetchBatch == 0 {
		idx.opts.fetchBatch = 1
	}
	idx.metrics = metrics.NewIndexer(idx.opts.schedule.Network())

	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return nil, err
	}
	defer r.Release()

	head, err := r.LatestBlockInfo()
	switch {
	case errors.Is(err, dao.ErrNotFound):
		idx.state.Store(int32(StateEmpty))
		return idx, nil
	case err != nil:
		return nil, err
	}

	indexSpentSats, err := r.Statistic(tables.StatisticIndexSpentSats)
	if err != nil {
		return nil, err
	}
	if (indexSpentSats == 1) != idx.opts.indexSpentSats {
		return nil, fmt.Errorf("%w: index_spent_sats was %t", ErrConfigMismatch, indexSpentSats == 1)
	}
	idx.state.Store(int32(StateSynced))
	idx.opts.log.Infof("Index opened at height %d %s", head.Height, head.Hash)
	return idx, nil
}

func (idx *Indexer) State() State {
	return State(idx.state.Load())
}

func (idx *Indexer) Schedule() *ordinal.Schedule {
	return idx.opts.schedule
}

// head returns the watermark, or nil on an empty index.
func (idx *Indexer) head(r dao.Reader) (*tables.BlockInfo, error) {
	info, err := r.LatestBlockInfo()
	if errors.Is(err, dao.ErrNotFound) {
		return nil, nil
	}
	return info, err
}
