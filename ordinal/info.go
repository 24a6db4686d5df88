package ordinal

// Info gathers every derived attribute of a sat.
type Info struct {
	Number  Sat    `json:"number"`
	Decimal string `json:"decimal"`
	Degree  string `json:"degree"`
	Name    string `json:"name"`
	Epoch   Epoch  `json:"epoch"`
	Height  uint32 `json:"height"`
	Cycle   uint32 `json:"cycle"`
	Period  uint32 `json:"period"`
	Offset  uint64 `json:"offset"`
	Rarity  Rarity `json:"rarity"`
}

// Info returns the attributes of sat, rejecting numbers beyond the supply.
func (s *Schedule) Info(sat Sat) (*Info, error) {
	epoch, err := s.EpochOf(sat)
	if err != nil {
		return nil, err
	}
	height, _ := s.HeightOf(sat)
	degree, _ := s.Degree(sat)
	name, _ := s.Name(sat)
	decimal, _ := s.Decimal(sat)
	period, _ := s.Period(sat)
	return &Info{
		Number:  sat,
		Decimal: decimal,
		Degree:  degree.String(),
		Name:    name,
		Epoch:   epoch,
		Height:  height,
		Cycle:   degree.Hour,
		Period:  period,
		Offset:  degree.Third,
		Rarity:  NewRarityFromDegree(degree),
	}, nil
}
