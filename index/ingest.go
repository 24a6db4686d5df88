package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/index/model"
	"github.com/inscription-c/ordinals/index/tables"
)

// Ingest indexes block at height. Blocks must arrive in height order. A block
// whose parent is not the indexed head rolls back the stale head; the caller
// then receives a *ReorgError and continues from its ResumeHeight.
//
// ctx is only checked before the block starts; once started a block is either
// committed in full or not at all.
func (idx *Indexer) Ingest(ctx context.Context, block *wire.MsgBlock, height uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()

	started := time.Now()
	err := idx.ingest(block, height)
	var reorgErr *ReorgError
	if !errors.As(err, &reorgErr) {
		idx.metrics.ObserveIngest(err, started)
	}
	return err
}

func (idx *Indexer) ingest(block *wire.MsgBlock, height uint32) error {
	if block == nil || len(block.Transactions) == 0 {
		return newError(KindConsensus, height, fmt.Errorf("%w: block has no transactions", ErrMalformedBlock))
	}

	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return newError(KindStorage, height, err)
	}
	head, err := idx.head(r)
	if err != nil {
		r.Release()
		return newError(KindStorage, height, err)
	}

	if head == nil {
		defer r.Release()
		if height != 0 {
			return newError(KindConsensus, height, fmt.Errorf("%w: empty index expects height 0", ErrHeightGap))
		}
		return idx.indexBlock(r, block, height)
	}

	switch {
	case height > head.Height+1:
		r.Release()
		return newError(KindConsensus, height, fmt.Errorf("%w: index is at %d", ErrHeightGap, head.Height))

	case height == head.Height+1:
		if block.Header.PrevBlock.String() == head.Hash {
			defer r.Release()
			return idx.indexBlock(r, block, height)
		}
		r.Release()
		// the indexed head is not on the source's chain
		if head.Height == 0 {
			return newError(KindReorg, height, fmt.Errorf("%w: genesis block differs", ErrReorgTooDeep))
		}
		if err := idx.rollbackTo(head.Height - 1); err != nil {
			return err
		}
		return &ReorgError{ResumeHeight: head.Height, RolledBack: 1}

	default:
		stored, err := r.BlockInfo(height)
		r.Release()
		if err != nil {
			return newError(KindStorage, height, err)
		}
		if stored.Hash == block.BlockHash().String() {
			return newError(KindConsensus, height, fmt.Errorf("%w: index is at %d", ErrBlockAlreadyIndexed, head.Height))
		}
		return idx.replace(block, height, head.Height)
	}
}

// replace swaps the indexed block at height, and every block above it, for block.
func (idx *Indexer) replace(block *wire.MsgBlock, height, headHeight uint32) error {
	if height == 0 {
		return newError(KindReorg, height, fmt.Errorf("%w: genesis block differs", ErrReorgTooDeep))
	}
	if depth := headHeight - height + 1; depth > idx.opts.maxReorgDepth {
		return newError(KindReorg, height, fmt.Errorf("%w: depth %d, window %d", ErrReorgTooDeep, depth, idx.opts.maxReorgDepth))
	}
	if err := idx.rollbackTo(height - 1); err != nil {
		return err
	}

	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return newError(KindStorage, height, err)
	}
	defer r.Release()
	parent, err := r.BlockInfo(height - 1)
	if err != nil {
		return newError(KindStorage, height, err)
	}
	if block.Header.PrevBlock.String() == parent.Hash {
		return idx.indexBlock(r, block, height)
	}
	if height-1 == 0 {
		return newError(KindReorg, height, fmt.Errorf("%w: genesis block differs", ErrReorgTooDeep))
	}
	if err := idx.rollbackTo(height - 2); err != nil {
		return err
	}
	return &ReorgError{ResumeHeight: height - 1, RolledBack: headHeight - height + 2}
}

// indexBlock applies block on top of the state read through r and commits it.
func (idx *Indexer) indexBlock(r dao.Reader, block *wire.MsgBlock, height uint32) error {
	start := time.Now()
	u := &blockUpdater{
		idx:     idx,
		reader:  r,
		height:  height,
		pending: make(map[wire.OutPoint]*tables.OutpointSatRange),
		touched: make(map[wire.OutPoint]struct{}),
	}
	if err := u.index(block); err != nil {
		return err
	}
	if err := u.commit(block); err != nil {
		return err
	}

	idx.state.Store(int32(StateSynced))
	idx.metrics.ObserveCommit(height, u.satRanges, u.outputs)
	idx.opts.log.Infof("Block Height %d Wrote %d sat ranges from %d outputs in %d ms",
		height, u.satRanges, u.outputs, time.Since(start).Milliseconds())
	return nil
}

// blockUpdater computes one block's mutations in memory on top of a snapshot.
type blockUpdater struct {
	idx    *Indexer
	reader dao.Reader
	height uint32

	pending map[wire.OutPoint]*tables.OutpointSatRange
	touched map[wire.OutPoint]struct{}
	undo    []tables.UndoEntry
	order   []wire.OutPoint

	satRanges uint64
	outputs   uint64
	lostSats  uint64
}

func (u *blockUpdater) get(outpoint wire.OutPoint) (*tables.OutpointSatRange, error) {
	if record, ok := u.pending[outpoint]; ok {
		if record == nil {
			return nil, dao.ErrNotFound
		}
		return record, nil
	}
	return u.reader.OutpointSatRange(outpoint)
}

// touch records the committed state of outpoint the first time the block changes it.
func (u *blockUpdater) touch(outpoint wire.OutPoint) error {
	if _, ok := u.touched[outpoint]; ok {
		return nil
	}
	entry := tables.UndoEntry{Outpoint: outpoint.String()}
	prior, err := u.reader.OutpointSatRange(outpoint)
	switch {
	case err == nil:
		entry.Existed = true
		if entry.Prior, err = prior.MarshalBinary(); err != nil {
			return err
		}
	case !errors.Is(err, dao.ErrNotFound):
		return err
	}
	u.touched[outpoint] = struct{}{}
	u.order = append(u.order, outpoint)
	u.undo = append(u.undo, entry)
	return nil
}

func (u *blockUpdater) put(outpoint wire.OutPoint, record *tables.OutpointSatRange) error {
	if err := u.touch(outpoint); err != nil {
		return err
	}
	u.pending[outpoint] = record
	return nil
}

func (u *blockUpdater) spend(outpoint wire.OutPoint, record *tables.OutpointSatRange) error {
	if err := u.touch(outpoint); err != nil {
		return err
	}
	if !u.idx.opts.indexSpentSats {
		u.pending[outpoint] = nil
		return nil
	}
	spent := *record
	spent.Spent = true
	spent.SpentHeight = u.height
	u.pending[outpoint] = &spent
	return nil
}

func (u *blockUpdater) index(block *wire.MsgBlock) error {
	schedule := u.idx.opts.schedule
	coinbase := block.Transactions[0]
	if !blockchain.IsCoinBaseTx(coinbase) {
		return newError(KindConsensus, u.height, fmt.Errorf("%w: first transaction is not a coinbase", ErrMalformedBlock))
	}

	available := newRangeQueue()
	if subsidy := schedule.Subsidy(u.height); subsidy > 0 {
		start := uint64(schedule.HeightStartingSat(u.height))
		if err := available.push(tables.SatRange{Start: start, End: start + subsidy}); err != nil {
			return newError(KindConsistency, u.height, err)
		}
	}

	for i, tx := range block.Transactions[1:] {
		if blockchain.IsCoinBaseTx(tx) {
			return newError(KindConsensus, u.height, fmt.Errorf("%w: coinbase at index %d", ErrMalformedBlock, i+1))
		}
		txid := tx.TxHash()

		inputs := newRangeQueue()
		for _, in := range tx.TxIn {
			if model.IsNullOutpoint(in.PreviousOutPoint) {
				return newError(KindConsensus, u.height, fmt.Errorf("%w: %s spends the null outpoint", ErrMalformedBlock, txid))
			}
			record, err := u.get(in.PreviousOutPoint)
			if errors.Is(err, dao.ErrNotFound) || (err == nil && record.Spent) {
				return newError(KindConsensus, u.height, fmt.Errorf("%w: %s spends %s", ErrUnknownOutput, txid, in.PreviousOutPoint))
			}
			if err != nil {
				return newError(KindStorage, u.height, err)
			}
			ranges, err := record.SatRanges()
			if err != nil {
				return newError(KindConsistency, u.height, fmt.Errorf("output %s: %w", in.PreviousOutPoint, err))
			}
			if err := inputs.push(ranges...); err != nil {
				return newError(KindConsistency, u.height, fmt.Errorf("output %s: %w", in.PreviousOutPoint, err))
			}
			if err := u.spend(in.PreviousOutPoint, record); err != nil {
				return newError(KindStorage, u.height, err)
			}
		}

		inputTotal := inputs.Len()
		outputTotal, err := u.assign(tx, inputs)
		if err != nil {
			if errors.Is(err, ErrInsufficientSats) {
				return newError(KindConsensus, u.height, fmt.Errorf("%w: %s: %v", ErrOutputsExceedInputs, txid, err))
			}
			return err
		}
		fee := inputs.drain()
		if outputTotal+fee.Total() != inputTotal {
			return newError(KindConsistency, u.height, fmt.Errorf("%w: %s inputs %d outputs %d fee %d",
				ErrRangeMismatch, txid, inputTotal, outputTotal, fee.Total()))
		}
		if err := available.push(fee...); err != nil {
			return newError(KindConsistency, u.height, err)
		}
	}

	if _, err := u.assign(coinbase, available); err != nil {
		if errors.Is(err, ErrInsufficientSats) {
			return newError(KindConsensus, u.height, fmt.Errorf("%w: %v", ErrCoinbaseOverclaim, err))
		}
		return err
	}
	if available.Len() > 0 {
		return u.lose(available.drain())
	}
	return nil
}

// assign hands each output of tx its value in sats from the front of queue.
func (u *blockUpdater) assign(tx *wire.MsgTx, queue *rangeQueue) (uint64, error) {
	txid := tx.TxHash()
	total := uint64(0)
	for vout, out := range tx.TxOut {
		if out.Value < 0 || out.Value > btcutil.MaxSatoshi {
			return 0, newError(KindConsensus, u.height, fmt.Errorf("%w: %s:%d value %d", ErrMalformedBlock, txid, vout, out.Value))
		}
		ranges, err := queue.take(uint64(out.Value))
		if err != nil {
			return 0, err
		}
		if ranges.Total() != uint64(out.Value) {
			return 0, newError(KindConsistency, u.height, fmt.Errorf("%w: %s:%d", ErrRangeMismatch, txid, vout))
		}

		outpoint := wire.OutPoint{Hash: txid, Index: uint32(vout)}
		if existing, err := u.get(outpoint); err == nil && !existing.Spent {
			u.idx.opts.log.Warnf("Output %s created again at height %d, replacing its sat ranges", outpoint, u.height)
		}
		if err := u.put(outpoint, tables.NewOutpointSatRange(outpoint, ranges, u.height)); err != nil {
			return 0, newError(KindStorage, u.height, err)
		}
		total += uint64(out.Value)
		u.satRanges += uint64(len(ranges))
		u.outputs++
	}
	return total, nil
}

// lose appends sats no coinbase output claimed to the null outpoint.
func (u *blockUpdater) lose(ranges tables.SatRanges) error {
	null := model.NullOutpoint()
	lost := tables.SatRanges{}
	record, err := u.get(null)
	switch {
	case err == nil:
		if lost, err = record.SatRanges(); err != nil {
			return newError(KindConsistency, u.height, err)
		}
	case !errors.Is(err, dao.ErrNotFound):
		return newError(KindStorage, u.height, err)
	}
	lost = append(lost, ranges...)
	u.lostSats += ranges.Total()
	u.satRanges += uint64(len(ranges))
	if err := u.put(null, tables.NewOutpointSatRange(null, lost, u.height)); err != nil {
		return newError(KindStorage, u.height, err)
	}
	return nil
}

func (u *blockUpdater) commit(block *wire.MsgBlock) error {
	idx := u.idx
	batch := idx.opts.store.NewBatch()
	committed := false
	defer func() {
		if !committed {
			batch.Discard()
		}
	}()

	for _, outpoint := range u.order {
		record := u.pending[outpoint]
		if record == nil {
			batch.DeleteOutpointSatRange(outpoint)
			continue
		}
		if err := batch.PutOutpointSatRange(outpoint, record); err != nil {
			return newError(KindStorage, u.height, err)
		}
	}

	info, err := tables.NewBlockInfo(u.height, &block.Header)
	if err != nil {
		return newError(KindConsensus, u.height, err)
	}
	if err := batch.PutBlockInfo(info); err != nil {
		return newError(KindStorage, u.height, err)
	}

	deltas := map[tables.StatisticType]uint64{
		tables.StatisticCommits:          1,
		tables.StatisticOutputsTraversed: u.outputs,
		tables.StatisticSatRanges:        u.satRanges,
		tables.StatisticLostSats:         u.lostSats,
	}
	for name, delta := range deltas {
		count, err := u.reader.Statistic(name)
		if err != nil {
			return newError(KindStorage, u.height, err)
		}
		batch.SetStatistic(name, count+delta)
	}
	if u.height == 0 {
		indexSpentSats := uint64(0)
		if idx.opts.indexSpentSats {
			indexSpentSats = 1
		}
		batch.SetStatistic(tables.StatisticIndexSpentSats, indexSpentSats)
	}

	undoLog, err := tables.NewUndoLog(&tables.BlockUndo{
		Height:     u.height,
		Entries:    u.undo,
		Statistics: deltas,
	})
	if err != nil {
		return newError(KindStorage, u.height, err)
	}
	batch.PutUndoLog(undoLog)
	if u.height >= idx.opts.maxReorgDepth {
		batch.DeleteUndoLog(u.height - idx.opts.maxReorgDepth)
	}

	if err := batch.Commit(); err != nil {
		return newError(KindStorage, u.height, err)
	}
	committed = true
	return nil
}
