package server

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/index/indextest"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/lightningnetwork/lnd/ticker"
	"gotest.tools/assert"
)

func newTestIndexer(t *testing.T, source index.BlockSource) *index.Indexer {
	t.Helper()
	store, err := dao.NewLevelDB(dao.WithInMemory())
	assert.NilError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	schedule, err := ordinal.NewCustomSchedule(10, 100)
	assert.NilError(t, err)
	idx, err := index.NewIndexer(
		index.WithStore(store),
		index.WithSchedule(schedule),
		index.WithClient(source),
	)
	assert.NilError(t, err)
	return idx
}

func waitForHeight(t *testing.T, idx *index.Indexer, height uint32) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if h, _, err := idx.CurrentHeightAndHash(); err == nil && h == height {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("index did not reach height %d", height)
}

func TestRunner(t *testing.T) {
	var builder indextest.Builder
	schedule, err := ordinal.NewCustomSchedule(10, 100)
	assert.NilError(t, err)
	chain := builder.Chain(chainhash.Hash{}, schedule.Subsidy, 0, 5)
	source := indextest.NewSource(chain)
	idx := newTestIndexer(t, source)

	force := ticker.NewForce(time.Hour)
	r, err := NewRunner(WithIndex(idx), WithTicker(force))
	assert.NilError(t, err)
	r.Start()

	// the first update runs without waiting for a tick
	waitForHeight(t, idx, 5)

	source.SetChain(append(chain, builder.Chain(chain[5].BlockHash(), schedule.Subsidy, 6, 8)...))
	force.Force <- time.Now()
	waitForHeight(t, idx, 8)

	r.Stop()
	<-r.Done()
	assert.NilError(t, r.Err())
	// stopping twice is harmless
	r.Stop()
}

func TestRunnerHaltsOnConsensusError(t *testing.T) {
	var builder indextest.Builder
	schedule, err := ordinal.NewCustomSchedule(10, 100)
	assert.NilError(t, err)
	chain := builder.Chain(chainhash.Hash{}, schedule.Subsidy, 0, 2)
	unknown := wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}
	bad := builder.Block(chain[2].BlockHash(),
		builder.Coinbase(25),
		indextest.Spend([]wire.OutPoint{unknown}, 10),
	)
	source := indextest.NewSource(append(chain, bad))
	idx := newTestIndexer(t, source)

	r, err := NewRunner(WithIndex(idx), WithTicker(ticker.NewForce(time.Hour)))
	assert.NilError(t, err)
	r.Start()

	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not halt")
	}
	assert.Assert(t, index.IsKind(r.Err(), index.KindConsensus))
	height, _, err := idx.CurrentHeightAndHash()
	assert.NilError(t, err)
	assert.Equal(t, height, uint32(2))
	r.Stop()
}

func TestRunnerStopBeforeStart(t *testing.T) {
	idx := newTestIndexer(t, indextest.NewSource(nil))
	r, err := NewRunner(WithIndex(idx), WithTicker(ticker.NewForce(time.Hour)))
	assert.NilError(t, err)
	r.Stop()
	assert.NilError(t, r.Err())
}

func TestNewRunnerRequiresIndex(t *testing.T) {
	_, err := NewRunner(WithPollInterval(time.Second))
	assert.ErrorContains(t, err, "index is nil")
}
