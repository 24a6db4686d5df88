package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/wire"
	"github.com/inscription-c/ordinals/constants"
	"github.com/inscription-c/ordinals/index/tables"
	"github.com/inscription-c/ordinals/ordinal"
)

var (
	ErrInvalidSatPoint   = errors.New("satpoint should be of the form txid:index:offset")
	ErrOffsetOutOfBounds = errors.New("satpoint offset out of bounds")
)

// SatPoint locates one sat by its output and offset within the output value.
type SatPoint struct {
	Outpoint wire.OutPoint
	Offset   uint64
}

func FormatSatPoint(outpoint string, offset uint64) string {
	return fmt.Sprintf("%s%s%d", outpoint, constants.OutpointDelimiter, offset)
}

func NewSatPointFromString(satpoint string) (*SatPoint, error) {
	if !constants.SatPointRegexp.MatchString(satpoint) {
		return nil, ErrInvalidSatPoint
	}
	idx := strings.LastIndex(satpoint, constants.OutpointDelimiter)
	outpoint, err := StringToOutpoint(satpoint[:idx])
	if err != nil {
		return nil, ErrInvalidSatPoint
	}
	offset, err := strconv.ParseUint(satpoint[idx+1:], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid offset: %v", ErrInvalidSatPoint, err)
	}
	return &SatPoint{
		Outpoint: *outpoint,
		Offset:   offset,
	}, nil
}

func (s *SatPoint) String() string {
	return FormatSatPoint(s.Outpoint.String(), s.Offset)
}

// Resolve walks ranges in arrival order and returns the sat at the offset.
func (s *SatPoint) Resolve(ranges tables.SatRanges) (ordinal.Sat, error) {
	offset := uint64(0)
	for _, satRange := range ranges {
		if s.Offset < offset+satRange.Len() {
			return ordinal.Sat(satRange.Start + s.Offset - offset), nil
		}
		offset += satRange.Len()
	}
	return 0, fmt.Errorf("%w: offset %d, output holds %d sats", ErrOffsetOutOfBounds, s.Offset, offset)
}
