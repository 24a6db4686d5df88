package tables

import (
	"encoding/json"
	"errors"
	"fmt"

	"lukechampine.com/uint128"
)

var ErrInvalidSatRange = errors.New("invalid sat range")

const (
	// SatRangeSize is the packed size of a range: a 51-bit start and a 33-bit length.
	SatRangeSize = 11

	maxRangeStart = 1 << 51
	maxRangeDelta = 1 << 33
)

// SatRange is the half-open interval [Start, End) of ordinals.
type SatRange struct {
	Start uint64
	End   uint64
}

func (s SatRange) Len() uint64 {
	return s.End - s.Start
}

// Validate rejects empty ranges and ranges the packed encoding cannot hold.
func (s SatRange) Validate() error {
	if s.Start >= s.End {
		return fmt.Errorf("%w: [%d, %d) is empty", ErrInvalidSatRange, s.Start, s.End)
	}
	if s.Start >= maxRangeStart || s.Len() >= maxRangeDelta {
		return fmt.Errorf("%w: [%d, %d) exceeds encoding", ErrInvalidSatRange, s.Start, s.End)
	}
	return nil
}

func (s SatRange) String() string {
	return fmt.Sprintf("[%d, %d)", s.Start, s.End)
}

func (s SatRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]uint64{s.Start, s.End})
}

func (s *SatRange) UnmarshalJSON(data []byte) error {
	var v [2]uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Start, s.End = v[0], v[1]
	return nil
}

// Store packs the range little endian, start in the low 51 bits and length above it.
func (s SatRange) Store() []byte {
	n := uint128.From64(s.Start).Or(uint128.From64(s.Len()).Lsh(51))
	var buf [16]byte
	n.PutBytes(buf[:])
	res := make([]byte, SatRangeSize)
	copy(res, buf[:SatRangeSize])
	return res
}

func NewSatRange(v []byte) (SatRange, error) {
	if len(v) != SatRangeSize {
		return SatRange{}, fmt.Errorf("%w: %d bytes", ErrInvalidSatRange, len(v))
	}
	var buf [16]byte
	copy(buf[:], v)
	n := uint128.FromBytes(buf[:])
	base := n.Lo & (maxRangeStart - 1)
	delta := n.Rsh(51).Lo
	r := SatRange{Start: base, End: base + delta}
	if err := r.Validate(); err != nil {
		return SatRange{}, err
	}
	return r, nil
}

// SatRanges is the ordered range list of one output, in arrival order.
type SatRanges []SatRange

// Total returns the number of sats held by the list.
func (r SatRanges) Total() uint64 {
	total := uint64(0)
	for _, satRange := range r {
		total += satRange.Len()
	}
	return total
}

func (r SatRanges) Validate() error {
	for _, satRange := range r {
		if err := satRange.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r SatRanges) Store() []byte {
	res := make([]byte, 0, len(r)*SatRangeSize)
	for _, satRange := range r {
		res = append(res, satRange.Store()...)
	}
	return res
}

func NewSatRanges(data []byte) (SatRanges, error) {
	if len(data)%SatRangeSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidSatRange, len(data), SatRangeSize)
	}
	res := make(SatRanges, 0, len(data)/SatRangeSize)
	for i := 0; i < len(data); i += SatRangeSize {
		satRange, err := NewSatRange(data[i : i+SatRangeSize])
		if err != nil {
			return nil, err
		}
		res = append(res, satRange)
	}
	return res, nil
}
