package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/gin-gonic/gin"
	"github.com/inscription-c/ordinals/index"
	"github.com/inscription-c/ordinals/index/dao"
	"github.com/inscription-c/ordinals/index/indextest"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle/api"
	"gotest.tools/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testResp struct {
	ErrNo  api.Code        `json:"err_no"`
	ErrMsg string          `json:"err_msg"`
	Data   json.RawMessage `json:"data"`
}

type fixture struct {
	handler *Handler
	chain   []*wire.MsgBlock
	spend   *wire.MsgTx
}

// newFixture indexes three regtest blocks; block 2 spends the coinbase of block 1.
func newFixture(t *testing.T, ingest bool) *fixture {
	t.Helper()
	store, err := dao.NewLevelDB(dao.WithInMemory())
	assert.NilError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	schedule, err := ordinal.NewSchedule(&chaincfg.RegressionNetParams)
	assert.NilError(t, err)
	idx, err := index.NewIndexer(index.WithStore(store), index.WithSchedule(schedule))
	assert.NilError(t, err)

	builder := &indextest.Builder{}
	chain := builder.Chain(chainhash.Hash{}, schedule.Subsidy, 0, 1)
	spend := indextest.Spend([]wire.OutPoint{indextest.Outpoint(chain[1].Transactions[0], 0)}, 1_000_000_000, 3_999_990_000)
	chain = append(chain, builder.Block(chain[1].BlockHash(), builder.Coinbase(5_000_010_000), spend))
	if ingest {
		for height, block := range chain {
			assert.NilError(t, idx.Ingest(context.Background(), block, uint32(height)))
		}
	}

	h, err := New(WithIndex(idx), WithEngine(gin.New()), WithEnablePProf(true))
	assert.NilError(t, err)
	return &fixture{handler: h, chain: chain, spend: spend}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.handler.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (f *fixture) getJSON(t *testing.T, path string, status int, data interface{}) testResp {
	t.Helper()
	w := f.get(t, path)
	assert.Equal(t, w.Code, status, "GET %s: %s", path, w.Body.String())
	resp := testResp{}
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if data != nil {
		assert.NilError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func TestStatus(t *testing.T) {
	f := newFixture(t, true)
	status := &StatusResp{}
	resp := f.getJSON(t, "/status", http.StatusOK, status)
	assert.Equal(t, resp.ErrNo, api.CodeSuccess)
	assert.Equal(t, status.Network, chaincfg.RegressionNetParams.Name)
	assert.Equal(t, status.State, "synced")
	assert.Equal(t, *status.Height, uint32(2))
	assert.Equal(t, status.Hash, f.chain[2].BlockHash().String())
	assert.Equal(t, status.Statistics["Commits"], uint64(3))
	assert.Equal(t, status.Statistics["OutputsTraversed"], uint64(5))
}

func TestStatusHalted(t *testing.T) {
	f := newFixture(t, true)
	f.handler.options.halted = func() error { return errors.New("consensus error at height 3") }
	status := &StatusResp{}
	f.getJSON(t, "/status", http.StatusOK, status)
	assert.Equal(t, status.Halted, "consensus error at height 3")
	assert.Equal(t, *status.Height, uint32(2))
}

func TestEmptyIndex(t *testing.T) {
	f := newFixture(t, false)
	status := &StatusResp{}
	f.getJSON(t, "/status", http.StatusOK, status)
	assert.Equal(t, status.State, "empty")
	assert.Assert(t, status.Height == nil)

	assert.Equal(t, f.get(t, "/blockheight").Code, http.StatusNotFound)
	resp := f.getJSON(t, "/blockhash", http.StatusNotFound, nil)
	assert.Equal(t, resp.ErrNo, api.CodeNotFound)
}

func TestBlocks(t *testing.T) {
	f := newFixture(t, true)

	w := f.get(t, "/blockheight")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, w.Body.String(), "2")

	w = f.get(t, "/blockhash")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, w.Body.String(), f.chain[2].BlockHash().String())

	w = f.get(t, "/blockhash/0")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, w.Body.String(), f.chain[0].BlockHash().String())

	f.getJSON(t, "/blockhash/9", http.StatusNotFound, nil)
	resp := f.getJSON(t, "/blockhash/tip", http.StatusBadRequest, nil)
	assert.Equal(t, resp.ErrNo, api.CodeParamsInvalid)
}

func TestOutput(t *testing.T) {
	f := newFixture(t, true)
	coinbase := f.chain[2].Transactions[0]

	output := &OutputResp{}
	f.getJSON(t, "/output/"+indextest.Outpoint(coinbase, 0).String(), http.StatusOK, output)
	assert.Equal(t, output.Value, uint64(5_000_010_000))
	assert.Equal(t, output.ValueBtc, "50.00010000")
	assert.Equal(t, output.Height, uint32(2))
	assert.Equal(t, len(output.SatRanges), 2)
	assert.Equal(t, output.SatRanges[0].Start, uint64(10_000_000_000))
	assert.Equal(t, output.SatRanges[1].Start, uint64(9_999_990_000))

	output = &OutputResp{}
	f.getJSON(t, "/output/"+indextest.Outpoint(f.spend, 1).String(), http.StatusOK, output)
	assert.Equal(t, output.ValueBtc, "39.99990000")
	assert.Equal(t, output.SatRanges[0].Start, uint64(6_000_000_000))

	f.getJSON(t, "/output/"+indextest.Outpoint(f.chain[1].Transactions[0], 0).String(), http.StatusNotFound, nil)
	f.getJSON(t, "/output/nonsense", http.StatusBadRequest, nil)
}

func TestSat(t *testing.T) {
	f := newFixture(t, true)

	info := &ordinal.Info{}
	f.getJSON(t, "/sat/0", http.StatusOK, info)
	assert.Equal(t, info.Number, ordinal.Sat(0))
	assert.Equal(t, info.Rarity, ordinal.RarityMythic)
	assert.Equal(t, info.Degree, "0°0′0″0‴")

	for _, query := range []string{"5000000000", "1.0", url.PathEscape("0°1′1″0‴")} {
		info = &ordinal.Info{}
		f.getJSON(t, "/sat/"+query, http.StatusOK, info)
		assert.Equal(t, info.Number, ordinal.Sat(5_000_000_000), query)
		assert.Equal(t, info.Height, uint32(1))
		assert.Equal(t, info.Rarity, ordinal.RarityUncommon)
		assert.Equal(t, info.Decimal, "1.0")
	}

	info = &ordinal.Info{}
	f.getJSON(t, "/block/1/sat/7", http.StatusOK, info)
	assert.Equal(t, info.Number, ordinal.Sat(5_000_000_007))

	f.getJSON(t, "/block/1/sat/5000000000", http.StatusBadRequest, nil)
	f.getJSON(t, "/sat/-1", http.StatusBadRequest, nil)
	f.getJSON(t, "/sat/99999999999999999", http.StatusBadRequest, nil)
}

func TestSatPoint(t *testing.T) {
	f := newFixture(t, true)
	outpoint := indextest.Outpoint(f.spend, 1)

	resp := &SatPointResp{}
	f.getJSON(t, "/satpoint/"+outpoint.String()+":10", http.StatusOK, resp)
	assert.Equal(t, resp.SatPoint, outpoint.String()+":10")
	assert.Equal(t, resp.Sat.Number, ordinal.Sat(6_000_000_010))

	f.getJSON(t, "/satpoint/"+outpoint.String()+":3999990000", http.StatusBadRequest, nil)
	f.getJSON(t, "/satpoint/"+outpoint.String(), http.StatusBadRequest, nil)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, true)
	assert.Equal(t, f.get(t, "/metrics").Code, http.StatusOK)
	assert.Equal(t, f.get(t, "/debug/pprof/").Code, http.StatusOK)
}
