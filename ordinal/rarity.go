package ordinal

import "fmt"

type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

var rarityNames = map[Rarity]string{
	RarityCommon:    "common",
	RarityUncommon:  "uncommon",
	RarityRare:      "rare",
	RarityEpic:      "epic",
	RarityLegendary: "legendary",
	RarityMythic:    "mythic",
}

func (r Rarity) String() string {
	if name, ok := rarityNames[r]; ok {
		return name
	}
	return "unknown"
}

func (r Rarity) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rarity) UnmarshalText(text []byte) error {
	for rarity, name := range rarityNames {
		if name == string(text) {
			*r = rarity
			return nil
		}
	}
	return fmt.Errorf("unknown rarity %q", text)
}

// NewRarityFromDegree classifies a sat by which boundaries its degree falls on.
func NewRarityFromDegree(degree Degree) Rarity {
	switch {
	case degree.Hour == 0 && degree.Minute == 0 && degree.Second == 0 && degree.Third == 0:
		return RarityMythic
	case degree.Minute == 0 && degree.Second == 0 && degree.Third == 0:
		return RarityLegendary
	case degree.Minute == 0 && degree.Third == 0:
		return RarityEpic
	case degree.Second == 0 && degree.Third == 0:
		return RarityRare
	case degree.Third == 0:
		return RarityUncommon
	default:
		return RarityCommon
	}
}

// Rarity returns the rarity of sat.
func (s *Schedule) Rarity(sat Sat) (Rarity, error) {
	degree, err := s.Degree(sat)
	if err != nil {
		return RarityCommon, err
	}
	return NewRarityFromDegree(degree), nil
}
