package index

import (
	"context"
	"errors"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"golang.org/x/sync/errgroup"
)

const maxRetryDelay = 120 * time.Second

// BlockSource is the node the index follows. GetBlockCount returns the height
// of the tip.
type BlockSource interface {
	GetBlockCount() (int64, error)
	GetBlockHash(height int64) (*chainhash.Hash, error)
	GetBlock(hash *chainhash.Hash) (*wire.MsgBlock, error)
}

// UpdateIndex ingests blocks from the block source until the index reaches
// its tip. Reorgs reported by Ingest restart fetching from the resume height.
func (idx *Indexer) UpdateIndex(ctx context.Context) error {
	if idx.opts.cli == nil {
		return ErrNoBlockSource
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := idx.nextHeight()
		if err != nil {
			return err
		}
		tip, err := idx.opts.cli.GetBlockCount()
		if err != nil {
			return err
		}
		if tip < 0 || int64(next) > tip {
			return nil
		}

		blocks, err := idx.fetchBlockFrom(ctx, next, uint32(tip))
		if err != nil {
			return err
		}
		for i, block := range blocks {
			height := next + uint32(i)
			err := idx.Ingest(ctx, block, height)
			var reorgErr *ReorgError
			if errors.As(err, &reorgErr) {
				idx.opts.log.Warnf("Reorg at height %d, resuming from %d", height, reorgErr.ResumeHeight)
				break
			}
			if err != nil {
				return err
			}
		}
	}
}

func (idx *Indexer) nextHeight() (uint32, error) {
	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return 0, err
	}
	defer r.Release()
	head, err := idx.head(r)
	if err != nil {
		return 0, err
	}
	if head == nil {
		return 0, nil
	}
	return head.Height + 1, nil
}

// fetchBlockFrom fetches up to fetchBatch blocks starting at start, concurrently.
func (idx *Indexer) fetchBlockFrom(ctx context.Context, start, end uint32) ([]*wire.MsgBlock, error) {
	if start > end {
		return nil, nil
	}

	maxFetch := idx.opts.fetchBatch
	if end-start+1 < maxFetch {
		maxFetch = end - start + 1
	}

	errWg, ctx := errgroup.WithContext(ctx)
	blocks := make([]*wire.MsgBlock, maxFetch)
	for i := start; i < start+maxFetch; i++ {
		height := i
		errWg.Go(func() error {
			block, err := idx.getBlockWithRetries(ctx, height)
			if err != nil {
				return err
			}
			blocks[height-start] = block
			return nil
		})
	}
	if err := errWg.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (idx *Indexer) getBlockWithRetries(ctx context.Context, height uint32) (*wire.MsgBlock, error) {
	delay := time.Duration(0)
	for {
		if delay > 0 {
			if delay > maxRetryDelay {
				return nil, errors.New("would sleep for more than 120s, giving up")
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		} else {
			delay = idx.opts.retryDelay
		}

		hash, err := idx.opts.cli.GetBlockHash(int64(height))
		if err != nil {
			idx.opts.log.Warnf("GetBlockHash %d: %v", height, err)
			continue
		}
		block, err := idx.opts.cli.GetBlock(hash)
		if err != nil {
			idx.opts.log.Warnf("GetBlock %s: %v", hash, err)
			continue
		}
		return block, nil
	}
}
