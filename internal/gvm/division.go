package gvm

import (
	"fmt"
	"strings"
)

// Division scales the beat clock: half time, normal, or double time.
type Division int

const (
	DivisionNormal Division = iota
	DivisionHalf
	DivisionDouble
)

// Multiplier returns the factor applied to BPM when computing beat duration.
func (d Division) Multiplier() float64 {
	switch d {
	case DivisionHalf:
		return 0.5
	case DivisionDouble:
		return 2
	default:
		return 1
	}
}

func (d Division) String() string {
	switch d {
	case DivisionHalf:
		return "half"
	case DivisionDouble:
		return "double"
	default:
		return "normal"
	}
}

// Slower steps toward half time, stopping there.
func (d Division) Slower() Division {
	switch d {
	case DivisionDouble:
		return DivisionNormal
	default:
		return DivisionHalf
	}
}

// Faster steps toward double time, stopping there.
func (d Division) Faster() Division {
	switch d {
	case DivisionHalf:
		return DivisionNormal
	default:
		return DivisionDouble
	}
}

// ParseDivision accepts half/normal/double and a few musical aliases.
func ParseDivision(name string) (Division, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "normal", "1", "1x":
		return DivisionNormal, nil
	case "half", "0.5", "0.5x", "halftime":
		return DivisionHalf, nil
	case "double", "2", "2x", "doubletime":
		return DivisionDouble, nil
	default:
		return DivisionNormal, fmt.Errorf("unknown division %q", name)
	}
}
