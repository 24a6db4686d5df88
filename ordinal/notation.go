package ordinal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidNotation = errors.New("invalid sat notation")

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Name returns the name of sat. Names count down from the end of the supply,
// so the last sat ever issued is "a".
func (s *Schedule) Name(sat Sat) (string, error) {
	if sat >= s.Supply() {
		return "", fmt.Errorf("%w: %d", ErrInvalidSat, sat)
	}
	x := uint64(s.Supply() - sat)
	var name []byte
	for x > 0 {
		name = append(name, nameAlphabet[(x-1)%26])
		x = (x - 1) / 26
	}
	for i, j := 0, len(name)-1; i < j; i, j = i+1, j-1 {
		name[i], name[j] = name[j], name[i]
	}
	return string(name), nil
}

// Decimal returns sat as "<height>.<offset within block subsidy>".
func (s *Schedule) Decimal(sat Sat) (string, error) {
	height, err := s.HeightOf(sat)
	if err != nil {
		return "", err
	}
	third, err := s.Third(sat)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d", height, third), nil
}

// Parse reads a sat in integer, decimal, degree or name notation.
func (s *Schedule) Parse(str string) (Sat, error) {
	switch {
	case str == "":
		return 0, fmt.Errorf("%w: empty", ErrInvalidNotation)
	case strings.Contains(str, "°"):
		return s.parseDegree(str)
	case strings.Contains(str, "."):
		return s.parseDecimal(str)
	case strings.Trim(str, "0123456789") == "":
		n, err := strconv.ParseUint(str, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidNotation, err)
		}
		if n >= uint64(s.Supply()) {
			return 0, fmt.Errorf("%w: %d", ErrInvalidSat, n)
		}
		return Sat(n), nil
	case strings.Trim(str, nameAlphabet) == "":
		return s.parseName(str)
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidNotation, str)
	}
}

func (s *Schedule) parseName(str string) (Sat, error) {
	supply := uint64(s.Supply())
	x := uint64(0)
	for _, c := range str {
		if c < 'a' || c > 'z' {
			return 0, fmt.Errorf("%w: invalid character %q in name", ErrInvalidNotation, c)
		}
		x = x*26 + uint64(c-'a') + 1
		if x > supply {
			return 0, fmt.Errorf("%w: name %s out of range", ErrInvalidSat, str)
		}
	}
	return Sat(supply - x), nil
}

func (s *Schedule) parseDecimal(str string) (Sat, error) {
	heightStr, indexStr, _ := strings.Cut(str, ".")
	height, err := strconv.ParseUint(heightStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: height %s", ErrInvalidNotation, heightStr)
	}
	index, err := strconv.ParseUint(indexStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: offset %s", ErrInvalidNotation, indexStr)
	}
	return s.SatAt(uint32(height), index)
}

func (s *Schedule) parseDegree(str string) (Sat, error) {
	var parts [4]uint64
	rest := str
	for i, sep := range []string{"°", "′", "″", "‴"} {
		var field string
		var ok bool
		field, rest, ok = strings.Cut(rest, sep)
		if !ok {
			return 0, fmt.Errorf("%w: missing %s in %s", ErrInvalidNotation, sep, str)
		}
		n, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidNotation, str)
		}
		parts[i] = n
	}
	if rest != "" {
		return 0, fmt.Errorf("%w: trailing %q", ErrInvalidNotation, rest)
	}

	cycle, epochOffset, periodOffset, third := parts[0], parts[1], parts[2], parts[3]
	if cycle > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: cycle %d", ErrInvalidNotation, cycle)
	}
	if epochOffset >= uint64(s.halvingInterval) {
		return 0, fmt.Errorf("%w: epoch offset %d", ErrInvalidNotation, epochOffset)
	}
	if periodOffset >= uint64(DiffChangeInterval) {
		return 0, fmt.Errorf("%w: period offset %d", ErrInvalidNotation, periodOffset)
	}

	cycleStart := cycle * s.cycleBlocks()
	for epoch := uint64(0); epoch < uint64(CycleEpochs); epoch++ {
		height := cycleStart + epoch*uint64(s.halvingInterval) + epochOffset
		if height > uint64(^uint32(0)) {
			break
		}
		if height%uint64(DiffChangeInterval) == periodOffset {
			return s.SatAt(uint32(height), third)
		}
	}
	return 0, fmt.Errorf("%w: no height matches %s", ErrInvalidNotation, str)
}
