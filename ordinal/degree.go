package ordinal

import "fmt"

// Degree is the position of a sat expressed as cycle, epoch offset, period
// offset and block offset.
type Degree struct {
	Hour   uint32 `json:"hour"`
	Minute uint32 `json:"minute"`
	Second uint32 `json:"second"`
	Third  uint64 `json:"third"`
}

func (d Degree) String() string {
	return fmt.Sprintf("%d°%d′%d″%d‴", d.Hour, d.Minute, d.Second, d.Third)
}

// Degree returns the degree notation of sat.
func (s *Schedule) Degree(sat Sat) (Degree, error) {
	height, err := s.HeightOf(sat)
	if err != nil {
		return Degree{}, err
	}
	third, err := s.Third(sat)
	if err != nil {
		return Degree{}, err
	}
	return Degree{
		Hour:   uint32(uint64(height) / s.cycleBlocks()),
		Minute: height % s.halvingInterval,
		Second: height % DiffChangeInterval,
		Third:  third,
	}, nil
}
