package ordinal

import (
	"errors"
	"testing"

	"gotest.tools/assert"
)

func TestName(t *testing.T) {
	s := mainnet(t)
	cases := []struct {
		sat  Sat
		name string
	}{
		{0, "nvtdijuwxlp"},
		{1, "nvtdijuwxlo"},
		{26, "nvtdijuwxkp"},
		{27, "nvtdijuwxko"},
		{2099999997689999, "a"},
		{2099999997689974, "z"},
		{2099999997689973, "aa"},
	}
	for _, c := range cases {
		name, err := s.Name(c.sat)
		assert.NilError(t, err)
		assert.Equal(t, name, c.name)

		parsed, err := s.Parse(c.name)
		assert.NilError(t, err)
		assert.Equal(t, parsed, c.sat)
	}
}

func TestDegree(t *testing.T) {
	s := mainnet(t)
	cases := []struct {
		sat    Sat
		degree string
	}{
		{0, "0°0′0″0‴"},
		{1, "0°0′0″1‴"},
		{5_000_000_000, "0°1′1″0‴"},
		{1050000000000000, "0°0′336″0‴"},
		{2067187500000000, "1°0′0″0‴"},
		{2099999997689999, "5°209999′1007″0‴"},
	}
	for _, c := range cases {
		degree, err := s.Degree(c.sat)
		assert.NilError(t, err)
		assert.Equal(t, degree.String(), c.degree)

		parsed, err := s.Parse(c.degree)
		assert.NilError(t, err)
		assert.Equal(t, parsed, c.sat)
	}
}

func TestRarity(t *testing.T) {
	s := mainnet(t)
	at := func(height uint32, index uint64) Sat {
		sat, err := s.SatAt(height, index)
		assert.NilError(t, err)
		return sat
	}
	cases := []struct {
		sat    Sat
		rarity Rarity
	}{
		{0, RarityMythic},
		{1, RarityCommon},
		{at(1, 0), RarityUncommon},
		{at(2016, 0), RarityRare},
		{at(210000, 0), RarityEpic},
		{at(1260000, 0), RarityLegendary},
		{at(1260000, 1), RarityCommon},
	}
	for _, c := range cases {
		rarity, err := s.Rarity(c.sat)
		assert.NilError(t, err)
		assert.Equal(t, rarity, c.rarity, "sat %d", c.sat)
	}
	assert.Equal(t, RarityEpic.String(), "epic")

	var rarity Rarity
	assert.NilError(t, rarity.UnmarshalText([]byte("legendary")))
	assert.Equal(t, rarity, RarityLegendary)
	assert.ErrorContains(t, rarity.UnmarshalText([]byte("shiny")), "unknown rarity")
}

func TestParse(t *testing.T) {
	s := mainnet(t)
	cases := []struct {
		in  string
		sat Sat
	}{
		{"0", 0},
		{"2099999997689999", 2099999997689999},
		{"0.0", 0},
		{"1.0", 5_000_000_000},
		{"210000.7", 1050000000000007},
	}
	for _, c := range cases {
		sat, err := s.Parse(c.in)
		assert.NilError(t, err, c.in)
		assert.Equal(t, sat, c.sat)
	}
}

func TestParseRejects(t *testing.T) {
	s := mainnet(t)
	cases := []struct {
		in  string
		err error
	}{
		{"", ErrInvalidNotation},
		{"2099999997690000", ErrInvalidSat},
		{"1.5000000000", ErrInvalidIndex},
		{"6930000.0", ErrInvalidIndex},
		{"0°1′2″0‴", ErrInvalidNotation},
		{"0°210000′0″0‴", ErrInvalidNotation},
		{"0°0′0″", ErrInvalidNotation},
		{"0°0′0″0‴x", ErrInvalidNotation},
		{"nvtdijuwxlq", ErrInvalidSat},
		{"Abc", ErrInvalidNotation},
		{"-1", ErrInvalidNotation},
	}
	for _, c := range cases {
		_, err := s.Parse(c.in)
		assert.Assert(t, errors.Is(err, c.err), "input %q: %v", c.in, err)
	}
}

func TestInfo(t *testing.T) {
	s := mainnet(t)
	info, err := s.Info(5_000_000_001)
	assert.NilError(t, err)
	assert.DeepEqual(t, *info, Info{
		Number:  5_000_000_001,
		Decimal: "1.1",
		Degree:  "0°1′1″1‴",
		Name:    "nvtcsezkbtg",
		Epoch:   0,
		Height:  1,
		Cycle:   0,
		Period:  0,
		Offset:  1,
		Rarity:  RarityCommon,
	})
}
