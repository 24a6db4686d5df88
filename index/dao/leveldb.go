package dao

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btclog"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is the embedded store backend.
type LevelDB struct {
	db     *leveldb.DB
	noSync bool
	log    btclog.Logger
}

type LevelDBOptions struct {
	dataDir  string
	inMemory bool
	noSync   bool
	log      btclog.Logger
}

type LevelDBOption func(*LevelDBOptions)

// WithDataDir sets the directory holding the database files.
func WithDataDir(dir string) LevelDBOption {
	return func(o *LevelDBOptions) {
		o.dataDir = dir
	}
}

// WithInMemory keeps the database in memory, for tests and dry runs.
func WithInMemory() LevelDBOption {
	return func(o *LevelDBOptions) {
		o.inMemory = true
	}
}

// WithNoSync skips fsync on commit.
func WithNoSync(noSync bool) LevelDBOption {
	return func(o *LevelDBOptions) {
		o.noSync = noSync
	}
}

func WithLevelDBLogger(log btclog.Logger) LevelDBOption {
	return func(o *LevelDBOptions) {
		o.log = log
	}
}

func NewLevelDB(opts ...LevelDBOption) (*LevelDB, error) {
	options := &LevelDBOptions{log: btclog.Disabled}
	for _, opt := range opts {
		opt(options)
	}

	var db *leveldb.DB
	var err error
	if options.inMemory {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		if options.dataDir == "" {
			return nil, errors.New("leveldb data dir is empty")
		}
		if err := os.MkdirAll(options.dataDir, 0700); err != nil {
			return nil, err
		}
		db, err = leveldb.OpenFile(options.dataDir, &opt.Options{NoSync: options.noSync})
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb open: %w", err)
	}
	options.log.Infof("Opened leveldb store %s", options.dataDir)
	return &LevelDB{db: db, noSync: options.noSync, log: options.log}, nil
}

func (l *LevelDB) Snapshot() (Reader, error) {
	snap, err := l.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &levelReader{snap: snap}, nil
}

func (l *LevelDB) NewBatch() Batch {
	return &levelBatch{db: l.db, batch: new(leveldb.Batch), sync: !l.noSync}
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelReader struct {
	snap *leveldb.Snapshot
}

func (r *levelReader) get(key []byte) ([]byte, error) {
	v, err := r.snap.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (r *levelReader) BlockInfo(height uint32) (*tables.BlockInfo, error) {
	v, err := r.get(heightKey(blockInfoPrefix, height))
	if err != nil {
		return nil, err
	}
	info := &tables.BlockInfo{Height: height}
	if err := info.UnmarshalBinary(v); err != nil {
		return nil, err
	}
	return info, nil
}

func (r *levelReader) LatestBlockInfo() (*tables.BlockInfo, error) {
	it := r.snap.NewIterator(util.BytesPrefix(blockInfoPrefix), nil)
	defer it.Release()
	if !it.Last() {
		if err := it.Error(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	height, ok := heightFromKey(blockInfoPrefix, it.Key())
	if !ok {
		return nil, fmt.Errorf("%w: block info key %x", tables.ErrInvalidRecord, it.Key())
	}
	info := &tables.BlockInfo{Height: height}
	if err := info.UnmarshalBinary(it.Value()); err != nil {
		return nil, err
	}
	return info, nil
}

func (r *levelReader) OutpointSatRange(outpoint wire.OutPoint) (*tables.OutpointSatRange, error) {
	v, err := r.get(outpointKey(outpoint))
	if err != nil {
		return nil, err
	}
	record := &tables.OutpointSatRange{Outpoint: outpoint.String()}
	if err := record.UnmarshalBinary(v); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *levelReader) UndoLog(height uint32) (*tables.UndoLog, error) {
	v, err := r.get(heightKey(undoLogPrefix, height))
	if err != nil {
		return nil, err
	}
	return &tables.UndoLog{Height: height, Data: v}, nil
}

func (r *levelReader) Statistic(name tables.StatisticType) (uint64, error) {
	v, err := r.get(statisticKey(string(name)))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("%w: statistic %s", tables.ErrInvalidRecord, name)
	}
	return binary.BigEndian.Uint64(v), nil
}

func (r *levelReader) Release() {
	r.snap.Release()
}

type levelBatch struct {
	db    *leveldb.DB
	batch *leveldb.Batch
	sync  bool
}

func (b *levelBatch) PutOutpointSatRange(outpoint wire.OutPoint, record *tables.OutpointSatRange) error {
	v, err := record.MarshalBinary()
	if err != nil {
		return err
	}
	b.batch.Put(outpointKey(outpoint), v)
	return nil
}

func (b *levelBatch) DeleteOutpointSatRange(outpoint wire.OutPoint) {
	b.batch.Delete(outpointKey(outpoint))
}

func (b *levelBatch) PutBlockInfo(info *tables.BlockInfo) error {
	v, err := info.MarshalBinary()
	if err != nil {
		return err
	}
	b.batch.Put(heightKey(blockInfoPrefix, info.Height), v)
	return nil
}

func (b *levelBatch) DeleteBlockInfo(height uint32) {
	b.batch.Delete(heightKey(blockInfoPrefix, height))
}

func (b *levelBatch) PutUndoLog(log *tables.UndoLog) {
	b.batch.Put(heightKey(undoLogPrefix, log.Height), log.Data)
}

func (b *levelBatch) DeleteUndoLog(height uint32) {
	b.batch.Delete(heightKey(undoLogPrefix, height))
}

func (b *levelBatch) SetStatistic(name tables.StatisticType, count uint64) {
	b.batch.Put(statisticKey(string(name)), binary.BigEndian.AppendUint64(nil, count))
}

func (b *levelBatch) Commit() error {
	return b.db.Write(b.batch, &opt.WriteOptions{Sync: b.sync})
}

func (b *levelBatch) Discard() {
	b.batch.Reset()
}
