package index

import (
	"context"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/index/indextest"
	"github.com/inscription-c/ordinals/ordinal"
	"gotest.tools/assert"
)

// harness drives an Indexer over an in-memory store with a schedule of ten
// blocks per halving and 100 sats of initial subsidy.
type harness struct {
	t       *testing.T
	idx     *Indexer
	store   *dao.LevelDB
	builder indextest.Builder
}

func testSchedule(t *testing.T) *ordinal.Schedule {
	schedule, err := ordinal.NewCustomSchedule(10, 100)
	assert.NilError(t, err)
	return schedule
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	store, err := dao.NewLevelDB(dao.WithInMemory())
	assert.NilError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return openHarness(t, store, opts...)
}

func openHarness(t *testing.T, store *dao.LevelDB, opts ...Option) *harness {
	t.Helper()
	opts = append([]Option{WithStore(store), WithSchedule(testSchedule(t))}, opts...)
	idx, err := NewIndexer(opts...)
	assert.NilError(t, err)
	return &harness{t: t, idx: idx, store: store}
}

func (h *harness) coinbase(values ...int64) *wire.MsgTx {
	return h.builder.Coinbase(values...)
}

func spend(inputs []wire.OutPoint, values ...int64) *wire.MsgTx {
	return indextest.Spend(inputs, values...)
}

func (h *harness) block(parent chainhash.Hash, txs ...*wire.MsgTx) *wire.MsgBlock {
	return h.builder.Block(parent, txs...)
}

// extend mines blocks from..to on parent, each paying its subsidy to a single output.
func (h *harness) extend(parent chainhash.Hash, from, to uint32) []*wire.MsgBlock {
	return h.builder.Chain(parent, h.idx.Schedule().Subsidy, from, to)
}

func (h *harness) ingest(block *wire.MsgBlock, height uint32) {
	h.t.Helper()
	assert.NilError(h.t, h.idx.Ingest(context.Background(), block, height))
}

func (h *harness) ingestAll(blocks []*wire.MsgBlock, from uint32) {
	h.t.Helper()
	for i, block := range blocks {
		h.ingest(block, from+uint32(i))
	}
}

func (h *harness) head() (uint32, chainhash.Hash) {
	h.t.Helper()
	height, hash, err := h.idx.CurrentHeightAndHash()
	assert.NilError(h.t, err)
	return height, *hash
}

func outpoint(tx *wire.MsgTx, index uint32) wire.OutPoint {
	return indextest.Outpoint(tx, index)
}
