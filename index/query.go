package index

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/index/model"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/inscription-c/ordinals/ordinal"
)

func (idx *Indexer) outpointSatRange(outpoint wire.OutPoint) (*tables.OutpointSatRange, error) {
	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return nil, err
	}
	defer r.Release()
	record, err := r.OutpointSatRange(outpoint)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrOutputNotFound
	}
	return record, err
}

// RangesOf returns the sat ranges of outpoint in arrival order. Spent outputs
// are only found when the index retains spent sats.
func (idx *Indexer) RangesOf(outpoint wire.OutPoint) (tables.SatRanges, error) {
	record, err := idx.outpointSatRange(outpoint)
	if err != nil {
		return nil, err
	}
	return record.SatRanges()
}

// Output returns the indexed state of outpoint.
func (idx *Indexer) Output(outpoint wire.OutPoint) (*model.Output, error) {
	record, err := idx.outpointSatRange(outpoint)
	if err != nil {
		return nil, err
	}
	return model.NewOutput(record)
}

// Resolve returns the sat at offset within outpoint.
func (idx *Indexer) Resolve(outpoint wire.OutPoint, offset uint64) (ordinal.Sat, error) {
	ranges, err := idx.RangesOf(outpoint)
	if err != nil {
		return 0, err
	}
	satPoint := &model.SatPoint{Outpoint: outpoint, Offset: offset}
	return satPoint.Resolve(ranges)
}

func (idx *Indexer) SatInfo(sat ordinal.Sat) (*ordinal.Info, error) {
	return idx.opts.schedule.Info(sat)
}

// SatAt returns the sat minted at index within the subsidy of height.
func (idx *Indexer) SatAt(height uint32, index uint64) (ordinal.Sat, error) {
	return idx.opts.schedule.SatAt(height, index)
}

// CurrentHeightAndHash returns the watermark.
func (idx *Indexer) CurrentHeightAndHash() (uint32, *chainhash.Hash, error) {
	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return 0, nil, err
	}
	defer r.Release()
	head, err := idx.head(r)
	if err != nil {
		return 0, nil, err
	}
	if head == nil {
		return 0, nil, ErrIndexEmpty
	}
	hash, err := head.BlockHash()
	if err != nil {
		return 0, nil, err
	}
	return head.Height, hash, nil
}

// BlockHash returns the hash of the indexed block at height.
func (idx *Indexer) BlockHash(height uint32) (*chainhash.Hash, error) {
	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return nil, err
	}
	defer r.Release()
	info, err := r.BlockInfo(height)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return info.BlockHash()
}

// Statistics returns every counter, missing ones as zero.
func (idx *Indexer) Statistics() (map[tables.StatisticType]uint64, error) {
	r, err := idx.opts.store.Snapshot()
	if err != nil {
		return nil, err
	}
	defer r.Release()
	res := make(map[tables.StatisticType]uint64, len(tables.Statistics))
	for _, name := range tables.Statistics {
		count, err := r.Statistic(name)
		if err != nil {
			return nil, err
		}
		res[name] = count
	}
	return res, nil
}
