package dao

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Key prefixes of the leveldb keyspace. Heights are big endian so iteration
// follows height order.
var (
	outpointSatRangePrefix = []byte("o")
	blockInfoPrefix        = []byte("b")
	undoLogPrefix          = []byte("u")
	statisticPrefix        = []byte("s")
)

func outpointKey(outpoint wire.OutPoint) []byte {
	key := make([]byte, 0, len(outpointSatRangePrefix)+chainhash.HashSize+4)
	key = append(key, outpointSatRangePrefix...)
	key = append(key, outpoint.Hash[:]...)
	return binary.BigEndian.AppendUint32(key, outpoint.Index)
}

func heightKey(prefix []byte, height uint32) []byte {
	key := make([]byte, 0, len(prefix)+4)
	key = append(key, prefix...)
	return binary.BigEndian.AppendUint32(key, height)
}

func heightFromKey(prefix, key []byte) (uint32, bool) {
	if len(key) != len(prefix)+4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(key[len(prefix):]), true
}

func statisticKey(name string) []byte {
	return append(append([]byte(nil), statisticPrefix...), name...)
}
