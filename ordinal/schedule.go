// Package ordinal numbers every satoshi by the order it was mined and derives
// epoch, height, degree, rarity and name of a number from the issuance schedule.
package ordinal

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"sort"

	"github.com/btcsuite/btcd/chaincfg"
)

const (
	OneBtc             uint64 = 100_000_000
	InitialSubsidy            = 50 * OneBtc
	CycleEpochs        uint32 = 6
	DiffChangeInterval uint32 = 2016

	// Sat ranges are persisted as a 51-bit start and a 33-bit length.
	MaxSupply  uint64 = 1 << 51
	MaxSubsidy uint64 = 1 << 33
)

var (
	ErrInvalidSat      = errors.New("sat number exceeds supply")
	ErrInvalidIndex    = errors.New("index exceeds block subsidy")
	ErrInvalidSchedule = errors.New("invalid issuance schedule")
)

// Sat is the ordinal number of a single satoshi.
type Sat uint64

func (s Sat) N() uint64 {
	return uint64(s)
}

// Epoch is the index of a subsidy halving era.
type Epoch uint32

// Schedule holds the precomputed epoch table of an issuance schedule.
// It is immutable after construction and safe for concurrent use.
type Schedule struct {
	name             string
	halvingInterval  uint32
	initialSubsidy   uint64
	firstPostSubsidy Epoch
	// startingSats[e] is the first ordinal of epoch e; the final entry is the supply.
	startingSats []Sat
}

// NewSchedule builds the schedule of the given network.
func NewSchedule(params *chaincfg.Params) (*Schedule, error) {
	if params == nil || params.SubsidyReductionInterval <= 0 {
		return nil, fmt.Errorf("%w: subsidy reduction interval must be positive", ErrInvalidSchedule)
	}
	s, err := NewCustomSchedule(uint32(params.SubsidyReductionInterval), InitialSubsidy)
	if err != nil {
		return nil, err
	}
	s.name = params.Name
	return s, nil
}

// NewCustomSchedule builds a schedule from a halving interval and the subsidy of epoch 0.
func NewCustomSchedule(halvingInterval uint32, initialSubsidy uint64) (*Schedule, error) {
	if halvingInterval == 0 || initialSubsidy == 0 {
		return nil, fmt.Errorf("%w: halving interval and initial subsidy must be positive", ErrInvalidSchedule)
	}
	if initialSubsidy >= MaxSubsidy {
		return nil, fmt.Errorf("%w: initial subsidy %d exceeds %d", ErrInvalidSchedule, initialSubsidy, MaxSubsidy)
	}

	s := &Schedule{
		name:            "custom",
		halvingInterval: halvingInterval,
		initialSubsidy:  initialSubsidy,
		startingSats:    []Sat{0},
	}
	for epoch := 0; initialSubsidy>>epoch > 0; epoch++ {
		hi, issued := bits.Mul64(initialSubsidy>>epoch, uint64(halvingInterval))
		next, carry := bits.Add64(uint64(s.startingSats[epoch]), issued, 0)
		if hi != 0 || carry != 0 || next > MaxSupply {
			return nil, fmt.Errorf("%w: supply exceeds %d", ErrInvalidSchedule, MaxSupply)
		}
		s.startingSats = append(s.startingSats, Sat(next))
	}
	s.firstPostSubsidy = Epoch(len(s.startingSats) - 1)

	if uint64(s.firstPostSubsidy)*uint64(halvingInterval) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: issuance outlasts the height range", ErrInvalidSchedule)
	}
	return s, nil
}

func (s *Schedule) Network() string {
	return s.name
}

func (s *Schedule) HalvingInterval() uint32 {
	return s.halvingInterval
}

// Supply is the total number of ordinals the schedule ever issues.
func (s *Schedule) Supply() Sat {
	return s.startingSats[s.firstPostSubsidy]
}

// FirstPostSubsidy is the first epoch with a subsidy of zero.
func (s *Schedule) FirstPostSubsidy() Epoch {
	return s.firstPostSubsidy
}

// EpochOfHeight returns the halving epoch containing height.
func (s *Schedule) EpochOfHeight(height uint32) Epoch {
	return Epoch(height / s.halvingInterval)
}

// FirstHeight returns the first height of epoch. Epochs past the end of
// issuance all map to the first height without subsidy.
func (s *Schedule) FirstHeight(epoch Epoch) uint32 {
	return uint32(s.clamp(epoch)) * s.halvingInterval
}

// EpochSubsidy returns the per-block subsidy paid throughout epoch.
func (s *Schedule) EpochSubsidy(epoch Epoch) uint64 {
	if epoch >= s.firstPostSubsidy {
		return 0
	}
	return s.initialSubsidy >> epoch
}

// Subsidy returns the block subsidy at height.
func (s *Schedule) Subsidy(height uint32) uint64 {
	return s.EpochSubsidy(s.EpochOfHeight(height))
}

// StartingSat returns the first ordinal issued in epoch.
func (s *Schedule) StartingSat(epoch Epoch) Sat {
	return s.startingSats[s.clamp(epoch)]
}

// HeightStartingSat returns the first ordinal issued by the coinbase at height.
// Heights without subsidy return the supply.
func (s *Schedule) HeightStartingSat(height uint32) Sat {
	epoch := s.EpochOfHeight(height)
	subsidy := s.EpochSubsidy(epoch)
	if subsidy == 0 {
		return s.Supply()
	}
	return s.StartingSat(epoch) + Sat(uint64(height-s.FirstHeight(epoch))*subsidy)
}

// EpochOf returns the epoch in which sat was issued.
func (s *Schedule) EpochOf(sat Sat) (Epoch, error) {
	if sat >= s.Supply() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSat, sat)
	}
	i := sort.Search(len(s.startingSats), func(i int) bool {
		return s.startingSats[i] > sat
	})
	return Epoch(i - 1), nil
}

// HeightOf returns the height of the block whose coinbase issued sat.
func (s *Schedule) HeightOf(sat Sat) (uint32, error) {
	epoch, err := s.EpochOf(sat)
	if err != nil {
		return 0, err
	}
	position := uint64(sat - s.StartingSat(epoch))
	return s.FirstHeight(epoch) + uint32(position/s.EpochSubsidy(epoch)), nil
}

// Third returns the offset of sat within the subsidy of its block.
func (s *Schedule) Third(sat Sat) (uint64, error) {
	epoch, err := s.EpochOf(sat)
	if err != nil {
		return 0, err
	}
	return uint64(sat-s.StartingSat(epoch)) % s.EpochSubsidy(epoch), nil
}

// SatAt returns the ordinal at index within the subsidy issued at height.
func (s *Schedule) SatAt(height uint32, index uint64) (Sat, error) {
	subsidy := s.Subsidy(height)
	if index >= subsidy {
		return 0, fmt.Errorf("%w: height %d subsidy %d index %d", ErrInvalidIndex, height, subsidy, index)
	}
	return s.HeightStartingSat(height) + Sat(index), nil
}

// Cycle returns the index of the conjunction cycle sat was issued in.
func (s *Schedule) Cycle(sat Sat) (uint32, error) {
	height, err := s.HeightOf(sat)
	if err != nil {
		return 0, err
	}
	return uint32(uint64(height) / s.cycleBlocks()), nil
}

// Period returns the difficulty adjustment period sat was issued in.
func (s *Schedule) Period(sat Sat) (uint32, error) {
	height, err := s.HeightOf(sat)
	if err != nil {
		return 0, err
	}
	return height / DiffChangeInterval, nil
}

func (s *Schedule) cycleBlocks() uint64 {
	return uint64(CycleEpochs) * uint64(s.halvingInterval)
}

func (s *Schedule) clamp(epoch Epoch) Epoch {
	if epoch > s.firstPostSubsidy {
		return s.firstPostSubsidy
	}
	return epoch
}
