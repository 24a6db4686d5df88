package dao

import (
	"os"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{}

	kv, err := NewLevelDB(WithInMemory())
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	stores["leveldb"] = kv

	if addr := os.Getenv("ORDINALS_TEST_MYSQL_ADDR"); addr != "" {
		db, err := NewDB(
			WithAddr(addr),
			WithUser(os.Getenv("ORDINALS_TEST_MYSQL_USER")),
			WithPassword(os.Getenv("ORDINALS_TEST_MYSQL_PASS")),
			WithDBName("ordinals_test"),
		)
		require.NoError(t, err)
		for _, table := range tables.Tables {
			require.NoError(t, db.Where("1 = 1").Delete(table).Error)
		}
		t.Cleanup(func() { _ = db.Close() })
		stores["mysql"] = db
	}
	return stores
}

func TestStoreEmpty(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			r, err := store.Snapshot()
			require.NoError(t, err)
			defer r.Release()

			_, err = r.LatestBlockInfo()
			require.ErrorIs(t, err, ErrNotFound)
			_, err = r.OutpointSatRange(wire.OutPoint{})
			require.ErrorIs(t, err, ErrNotFound)
			_, err = r.UndoLog(0)
			require.ErrorIs(t, err, ErrNotFound)
			count, err := r.Statistic(tables.StatisticCommits)
			require.NoError(t, err)
			require.Zero(t, count)
		})
	}
}

func TestStoreCommitAndSnapshot(t *testing.T) {
	genesis := chaincfg.MainNetParams.GenesisBlock
	outpoint := wire.OutPoint{Hash: genesis.Transactions[0].TxHash(), Index: 0}

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			before, err := store.Snapshot()
			require.NoError(t, err)
			defer before.Release()

			info, err := tables.NewBlockInfo(0, &genesis.Header)
			require.NoError(t, err)
			undo, err := tables.NewUndoLog(&tables.BlockUndo{Height: 0})
			require.NoError(t, err)

			batch := store.NewBatch()
			require.NoError(t, batch.PutOutpointSatRange(outpoint,
				tables.NewOutpointSatRange(outpoint, tables.SatRanges{{Start: 0, End: 5_000_000_000}}, 0)))
			require.NoError(t, batch.PutBlockInfo(info))
			batch.PutUndoLog(undo)
			batch.SetStatistic(tables.StatisticCommits, 1)
			require.NoError(t, batch.Commit())

			// a snapshot taken before the commit keeps the old view
			_, err = before.LatestBlockInfo()
			require.ErrorIs(t, err, ErrNotFound)

			after, err := store.Snapshot()
			require.NoError(t, err)
			defer after.Release()

			latest, err := after.LatestBlockInfo()
			require.NoError(t, err)
			require.Equal(t, uint32(0), latest.Height)
			require.Equal(t, genesis.BlockHash().String(), latest.Hash)

			record, err := after.OutpointSatRange(outpoint)
			require.NoError(t, err)
			ranges, err := record.SatRanges()
			require.NoError(t, err)
			require.Equal(t, tables.SatRanges{{Start: 0, End: 5_000_000_000}}, ranges)
			require.False(t, record.Spent)

			count, err := after.Statistic(tables.StatisticCommits)
			require.NoError(t, err)
			require.Equal(t, uint64(1), count)

			_, err = after.UndoLog(0)
			require.NoError(t, err)
		})
	}
}

func TestStoreDeleteAndDiscard(t *testing.T) {
	outpoint := wire.OutPoint{Hash: chainhash.Hash{1}, Index: 2}

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			batch := store.NewBatch()
			require.NoError(t, batch.PutOutpointSatRange(outpoint,
				tables.NewOutpointSatRange(outpoint, tables.SatRanges{{Start: 1, End: 2}}, 5)))
			require.NoError(t, batch.Commit())

			discarded := store.NewBatch()
			discarded.DeleteOutpointSatRange(outpoint)
			discarded.Discard()

			r, err := store.Snapshot()
			require.NoError(t, err)
			_, err = r.OutpointSatRange(outpoint)
			require.NoError(t, err)
			r.Release()

			batch = store.NewBatch()
			batch.DeleteOutpointSatRange(outpoint)
			require.NoError(t, batch.Commit())

			r, err = store.Snapshot()
			require.NoError(t, err)
			defer r.Release()
			_, err = r.OutpointSatRange(outpoint)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLatestBlockInfoOrdersByHeight(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisBlock.Header
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			batch := store.NewBatch()
			for _, height := range []uint32{1, 255, 256, 3} {
				info, err := tables.NewBlockInfo(height, &header)
				require.NoError(t, err)
				require.NoError(t, batch.PutBlockInfo(info))
			}
			require.NoError(t, batch.Commit())

			r, err := store.Snapshot()
			require.NoError(t, err)
			defer r.Release()
			latest, err := r.LatestBlockInfo()
			require.NoError(t, err)
			require.Equal(t, uint32(256), latest.Height)
		})
	}
}
