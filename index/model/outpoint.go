package model

import (
	"errors"
	"math"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/gogf/gf/v2/util/gconv"
	"github.com/inscription-c/ordinals/constants"
)

var ErrInvalidOutpoint = errors.New("outpoint should be of the form txid:index")

// StringToOutpoint parses "txid:index".
func StringToOutpoint(s string) (*wire.OutPoint, error) {
	s = strings.ToLower(s)
	if !constants.OutpointRegexp.MatchString(s) {
		return nil, ErrInvalidOutpoint
	}
	parts := strings.Split(s, constants.OutpointDelimiter)
	h, err := chainhash.NewHashFromStr(parts[0])
	if err != nil {
		return nil, err
	}
	if len(parts[1]) > 10 || gconv.Uint64(parts[1]) > math.MaxUint32 {
		return nil, ErrInvalidOutpoint
	}
	return wire.NewOutPoint(h, gconv.Uint32(parts[1])), nil
}

// NullOutpoint collects sats that no coinbase output claimed.
func NullOutpoint() wire.OutPoint {
	return wire.OutPoint{Index: math.MaxUint32}
}

func IsNullOutpoint(outpoint wire.OutPoint) bool {
	return outpoint == NullOutpoint()
}
