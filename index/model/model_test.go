package model

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/inscription-c/ordinals/ordinal"
	"gotest.tools/assert"
)

const genesisTxid = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"

func TestStringToOutpoint(t *testing.T) {
	outpoint, err := StringToOutpoint(genesisTxid + ":7")
	assert.NilError(t, err)
	assert.Equal(t, outpoint.Hash, chaincfg.MainNetParams.GenesisBlock.Transactions[0].TxHash())
	assert.Equal(t, outpoint.Index, uint32(7))

	for _, s := range []string{"", genesisTxid, genesisTxid + ":", genesisTxid + ":x", "zz:1", genesisTxid + ":4294967296"} {
		_, err := StringToOutpoint(s)
		assert.Assert(t, errors.Is(err, ErrInvalidOutpoint), s)
	}
}

func TestNullOutpoint(t *testing.T) {
	assert.Assert(t, IsNullOutpoint(NullOutpoint()))
	assert.Assert(t, !IsNullOutpoint(wire.OutPoint{}))
	assert.Equal(t, NullOutpoint().String(), "0000000000000000000000000000000000000000000000000000000000000000:4294967295")
}

func TestSatPointString(t *testing.T) {
	s := genesisTxid + ":0:123"
	satpoint, err := NewSatPointFromString(s)
	assert.NilError(t, err)
	assert.Equal(t, satpoint.Offset, uint64(123))
	assert.Equal(t, satpoint.String(), s)

	for _, bad := range []string{"", genesisTxid + ":0", genesisTxid + ":0:-1", genesisTxid + ":0:1:2"} {
		_, err := NewSatPointFromString(bad)
		assert.Assert(t, errors.Is(err, ErrInvalidSatPoint), bad)
	}
}

func TestSatPointResolve(t *testing.T) {
	ranges := tables.SatRanges{{Start: 100, End: 130}, {Start: 10, End: 20}}
	cases := []struct {
		offset uint64
		sat    ordinal.Sat
	}{
		{0, 100},
		{29, 129},
		{30, 10},
		{39, 19},
	}
	for _, c := range cases {
		sp := &SatPoint{Offset: c.offset}
		sat, err := sp.Resolve(ranges)
		assert.NilError(t, err)
		assert.Equal(t, sat, c.sat)
	}

	_, err := (&SatPoint{Offset: 40}).Resolve(ranges)
	assert.Assert(t, errors.Is(err, ErrOffsetOutOfBounds))
	_, err = (&SatPoint{}).Resolve(nil)
	assert.Assert(t, errors.Is(err, ErrOffsetOutOfBounds))
}
