package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/inscription-c/ordinals/index/model"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/inscription-c/ordinals/ordinal"
	"github.com/inscription-c/ordinals/server/handle/api"
	"gotest.tools/assert"
)

const txid = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"

func writeJSON(w http.ResponseWriter, status int, resp api.Resp) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func newServer(t *testing.T) (*httptest.Server, *int32) {
	var flaky int32
	mux := http.NewServeMux()
	mux.HandleFunc("/blockheight", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("840000"))
	})
	mux.HandleFunc("/blockhash/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(txid))
	})
	mux.HandleFunc("/output/"+txid+":0", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, api.RespOK(Output{
			Output: &model.Output{
				Outpoint:  txid + ":0",
				Value:     5000000000,
				SatRanges: tables.SatRanges{{Start: 0, End: 5000000000}},
			},
			ValueBtc: "50.00000000",
		}))
	})
	mux.HandleFunc("/output/"+txid+":1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, api.RespErr(api.CodeNotFound, "output not found"))
	})
	mux.HandleFunc("/sat/0", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&flaky, 1) < 3 {
			writeJSON(w, http.StatusInternalServerError, api.RespErr(api.CodeError500, "busy"))
			return
		}
		writeJSON(w, http.StatusOK, api.RespOK(ordinal.Info{Number: 0, Name: "nvtdijuwxlp", Rarity: ordinal.RarityMythic}))
	})
	mux.HandleFunc("/sat/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, api.RespErr(api.CodeError500, "broken"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &flaky
}

func TestClient(t *testing.T) {
	srv, _ := newServer(t)
	c := New(srv.URL+"/", WithRetries(2, time.Millisecond))
	ctx := context.Background()

	height, err := c.BlockHeight(ctx)
	assert.NilError(t, err)
	assert.Equal(t, height, uint32(840000))

	hash, err := c.BlockHash(ctx, 7)
	assert.NilError(t, err)
	assert.Equal(t, hash, txid)

	output, err := c.Output(ctx, txid+":0")
	assert.NilError(t, err)
	assert.Equal(t, output.Value, uint64(5000000000))
	assert.Equal(t, output.ValueBtc, "50.00000000")
	assert.DeepEqual(t, output.SatRanges, tables.SatRanges{{Start: 0, End: 5000000000}})
}

func TestClientNotFoundIsNotRetried(t *testing.T) {
	srv, _ := newServer(t)
	c := New(srv.URL, WithRetries(5, time.Hour))

	_, err := c.Output(context.Background(), txid+":1")
	var apiErr *APIError
	assert.Assert(t, errors.As(err, &apiErr))
	assert.Equal(t, apiErr.Status, http.StatusNotFound)
	assert.Equal(t, apiErr.Code, api.CodeNotFound)
	assert.Equal(t, apiErr.Msg, "output not found")
}

func TestClientRetriesServerErrors(t *testing.T) {
	srv, flaky := newServer(t)
	c := New(srv.URL, WithRetries(2, time.Millisecond))

	info, err := c.Sat(context.Background(), "0")
	assert.NilError(t, err)
	assert.Equal(t, info.Name, "nvtdijuwxlp")
	assert.Equal(t, info.Rarity, ordinal.RarityMythic)
	assert.Equal(t, atomic.LoadInt32(flaky), int32(3))

	_, err = c.Sat(context.Background(), "1")
	var apiErr *APIError
	assert.Assert(t, errors.As(err, &apiErr))
	assert.Equal(t, apiErr.Status, http.StatusInternalServerError)
}

func TestClientCancelled(t *testing.T) {
	srv, _ := newServer(t)
	c := New(srv.URL, WithRetries(3, time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.BlockHeight(ctx)
	assert.Assert(t, err != nil)
}
