package model

import (
	"github.com/inscription-c/ordinals/index/tables"
)

// Output is the indexed state of one transaction output.
type Output struct {
	Outpoint    string           `json:"outpoint"`
	Value       uint64           `json:"value"`
	Height      uint32           `json:"height"`
	Spent       bool             `json:"spent"`
	SpentHeight uint32           `json:"spent_height,omitempty"`
	SatRanges   tables.SatRanges `json:"sat_ranges"`
}

func NewOutput(record *tables.OutpointSatRange) (*Output, error) {
	ranges, err := record.SatRanges()
	if err != nil {
		return nil, err
	}
	return &Output{
		Outpoint:    record.Outpoint,
		Value:       ranges.Total(),
		Height:      record.Height,
		Spent:       record.Spent,
		SpentHeight: record.SpentHeight,
		SatRanges:   ranges,
	}, nil
}
