package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/index/tables"
)

// Rollback undoes every block above height. The index keeps height itself.
// ctx is checked between blocks, so a cancelled rollback stops at a block
// boundary.
func (idx *Indexer) Rollback(ctx context.Context, height uint32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return err
	}
	head, err := idx.head(r)
	r.Release()
	if err != nil {
		return err
	}
	if head == nil {
		return ErrIndexEmpty
	}
	if height >= head.Height {
		return nil
	}
	if depth := head.Height - height; depth > idx.opts.maxReorgDepth {
		return newError(KindReorg, head.Height, fmt.Errorf("%w: depth %d, window %d", ErrReorgTooDeep, depth, idx.opts.maxReorgDepth))
	}

	for h := head.Height; h > height; h-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := idx.rollbackHead(h); err != nil {
			return err
		}
	}
	return nil
}

// rollbackTo undoes indexed blocks until target is the head.
func (idx *Indexer) rollbackTo(target uint32) error {
	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return newError(KindStorage, target, err)
	}
	head, err := idx.head(r)
	r.Release()
	if err != nil {
		return newError(KindStorage, target, err)
	}
	if head == nil {
		return nil
	}
	for h := head.Height; h > target; h-- {
		if err := idx.rollbackHead(h); err != nil {
			return err
		}
	}
	return nil
}

// rollbackHead applies the undo log of the head block at height and removes it.
func (idx *Indexer) rollbackHead(height uint32) error {
	idx.state.Store(int32(StateReorganizing))
	emptied := false
	defer func() {
		if emptied {
			idx.state.Store(int32(StateEmpty))
		} else {
			idx.state.Store(int32(StateSynced))
		}
	}()

	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return newError(KindStorage, height, err)
	}
	defer r.Release()

	undoLog, err := r.UndoLog(height)
	if errors.Is(err, dao.ErrNotFound) {
		return newError(KindReorg, height, fmt.Errorf("%w: no undo log for height %d", ErrReorgTooDeep, height))
	}
	if err != nil {
		return newError(KindStorage, height, err)
	}
	undo, err := undoLog.BlockUndo()
	if err != nil {
		return newError(KindConsistency, height, err)
	}

	batch := idx.opts.store.NewBatch()
	committed := false
	defer func() {
		if !committed {
			batch.Discard()
		}
	}()

	// entries hold first-touch state, so the order they are restored in does not matter
	for _, entry := range undo.Entries {
		outpoint, err := parseOutpoint(entry.Outpoint)
		if err != nil {
			return newError(KindConsistency, height, err)
		}
		if !entry.Existed {
			batch.DeleteOutpointSatRange(*outpoint)
			continue
		}
		prior := &tables.OutpointSatRange{}
		if err := prior.UnmarshalBinary(entry.Prior); err != nil {
			return newError(KindConsistency, height, err)
		}
		prior.Outpoint = entry.Outpoint
		if err := batch.PutOutpointSatRange(*outpoint, prior); err != nil {
			return newError(KindStorage, height, err)
		}
	}

	for name, delta := range undo.Statistics {
		count, err := r.Statistic(name)
		if err != nil {
			return newError(KindStorage, height, err)
		}
		if count < delta {
			return newError(KindConsistency, height, fmt.Errorf("statistic %s below undo delta", name))
		}
		batch.SetStatistic(name, count-delta)
	}
	reorgs, err := r.Statistic(tables.StatisticReorgs)
	if err != nil {
		return newError(KindStorage, height, err)
	}
	batch.SetStatistic(tables.StatisticReorgs, reorgs+1)

	batch.DeleteBlockInfo(height)
	batch.DeleteUndoLog(height)
	if err := batch.Commit(); err != nil {
		return newError(KindStorage, height, err)
	}
	committed = true

	idx.metrics.ObserveRollback(height)
	idx.opts.log.Warnf("Rolled back block at height %d", height)
	emptied = height == 0
	return nil
}

func parseOutpoint(s string) (*wire.OutPoint, error) {
	outpoint, err := wire.NewOutPointFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: outpoint %q", tables.ErrInvalidRecord, s)
	}
	return outpoint, nil
}
