// Package dao persists the index. Backends provide snapshot reads and
// atomic multi-key commits.
package dao

import (
	"errors"

	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index/tables"
)

var ErrNotFound = errors.New("not found")

// Reader is a consistent view of the store. Release must be called once done.
type Reader interface {
	BlockInfo(height uint32) (*tables.BlockInfo, error)
	// LatestBlockInfo returns the watermark, or ErrNotFound on an empty store.
	LatestBlockInfo() (*tables.BlockInfo, error)
	OutpointSatRange(outpoint wire.OutPoint) (*tables.OutpointSatRange, error)
	UndoLog(height uint32) (*tables.UndoLog, error)
	// Statistic returns zero for counters never written.
	Statistic(name tables.StatisticType) (uint64, error)
	Release()
}

// Batch buffers writes; nothing is visible to readers until Commit.
type Batch interface {
	PutOutpointSatRange(outpoint wire.OutPoint, record *tables.OutpointSatRange) error
	DeleteOutpointSatRange(outpoint wire.OutPoint)
	PutBlockInfo(info *tables.BlockInfo) error
	DeleteBlockInfo(height uint32)
	PutUndoLog(log *tables.UndoLog)
	DeleteUndoLog(height uint32)
	SetStatistic(name tables.StatisticType, count uint64)
	// Commit applies every buffered write in one atomic unit.
	Commit() error
	Discard()
}

type Store interface {
	Snapshot() (Reader, error)
	NewBatch() Batch
	Close() error
}
