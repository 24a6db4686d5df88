package tables

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"gotest.tools/assert"
)

func TestOutpointSatRangeBinary(t *testing.T) {
	outpoint := wire.OutPoint{Hash: *chaincfg.MainNetParams.GenesisHash, Index: 3}
	record := NewOutpointSatRange(outpoint, SatRanges{{Start: 10, End: 20}}, 7)
	record.Spent = true
	record.SpentHeight = 9

	data, err := record.MarshalBinary()
	assert.NilError(t, err)

	got := &OutpointSatRange{Outpoint: record.Outpoint}
	assert.NilError(t, got.UnmarshalBinary(data))
	assert.Equal(t, got.Spent, true)
	assert.Equal(t, got.Height, uint32(7))
	assert.Equal(t, got.SpentHeight, uint32(9))
	ranges, err := got.SatRanges()
	assert.NilError(t, err)
	assert.DeepEqual(t, ranges, SatRanges{{Start: 10, End: 20}})

	op, err := got.WireOutpoint()
	assert.NilError(t, err)
	assert.Equal(t, *op, outpoint)

	assert.ErrorContains(t, got.UnmarshalBinary([]byte{2, 0, 0, 0, 0, 0, 0, 0, 0}), "invalid record")
}

func TestBlockInfoBinary(t *testing.T) {
	header := chaincfg.MainNetParams.GenesisBlock.Header
	info, err := NewBlockInfo(0, &header)
	assert.NilError(t, err)
	assert.Equal(t, info.Hash, chaincfg.MainNetParams.GenesisHash.String())
	assert.Equal(t, len(info.Header), wire.MaxBlockHeaderPayload)

	data, err := info.MarshalBinary()
	assert.NilError(t, err)
	got := &BlockInfo{}
	assert.NilError(t, got.UnmarshalBinary(data))
	assert.Equal(t, got.Hash, info.Hash)
	assert.Equal(t, got.Timestamp, header.Timestamp.Unix())
}

func TestUndoLogEncoding(t *testing.T) {
	undo := &BlockUndo{
		Height: 12,
		Entries: []UndoEntry{
			{Outpoint: "a:0"},
			{Outpoint: "b:1", Existed: true, Prior: []byte{0, 0, 0, 0, 1, 0, 0, 0, 0}},
		},
		Statistics: map[StatisticType]uint64{StatisticSatRanges: 4},
	}
	log, err := NewUndoLog(undo)
	assert.NilError(t, err)
	assert.Equal(t, log.Height, uint32(12))

	got, err := log.BlockUndo()
	assert.NilError(t, err)
	assert.Equal(t, got.Height, uint32(12))
	assert.Equal(t, len(got.Entries), 2)
	assert.Equal(t, got.Entries[0].Existed, false)
	assert.Equal(t, got.Entries[1].Outpoint, "b:1")
	assert.DeepEqual(t, got.Entries[1].Prior, undo.Entries[1].Prior)
	assert.Equal(t, got.Statistics[StatisticSatRanges], uint64(4))
}
