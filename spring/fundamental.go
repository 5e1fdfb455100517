package spring

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-springtune/tuning"
)

// FundamentalKind selects how the interval fundamental is chosen.
type FundamentalKind int

const (
	FundamentalFixed FundamentalKind = iota
	FundamentalLowest
	FundamentalHighest
	FundamentalLast
	FundamentalAutomatic
)

// FundamentalMode is a fundamental-selection behaviour. PitchClass is only
// used by FundamentalFixed.
type FundamentalMode struct {
	Kind       FundamentalKind
	PitchClass tuning.PitchClass
}

// Fixed returns a mode that always selects pc.
func Fixed(pc tuning.PitchClass) FundamentalMode {
	return FundamentalMode{Kind: FundamentalFixed, PitchClass: pc}
}

var (
	// Lowest selects the pitch class of the lowest active note.
	Lowest = FundamentalMode{Kind: FundamentalLowest}
	// Highest selects the pitch class of the highest active note.
	Highest = FundamentalMode{Kind: FundamentalHighest}
	// Last selects the pitch class of the most recently added note.
	Last = FundamentalMode{Kind: FundamentalLast}
	// Automatic selects the root implied by the active chord.
	Automatic = FundamentalMode{Kind: FundamentalAutomatic}
)

// Dynamic reports whether the selection depends on the active notes.
func (m FundamentalMode) Dynamic() bool {
	return m.Kind != FundamentalFixed
}

// Select picks the fundamental for the ascending active note set. lastAdded
// is the most recently added note, or -1. When the set offers nothing to
// decide on, previous is returned.
func (m FundamentalMode) Select(active []int, lastAdded int, previous tuning.PitchClass) tuning.PitchClass {
	switch m.Kind {
	case FundamentalFixed:
		return tuning.PitchClass(tuning.Mod12(int(m.PitchClass)))
	case FundamentalLowest:
		if len(active) == 0 {
			return previous
		}
		return tuning.PitchClassOf(active[0])
	case FundamentalHighest:
		if len(active) == 0 {
			return previous
		}
		return tuning.PitchClassOf(active[len(active)-1])
	case FundamentalLast:
		if lastAdded < 0 {
			return previous
		}
		return tuning.PitchClassOf(lastAdded)
	case FundamentalAutomatic:
		return FindFundamental(active, previous)
	}
	return previous
}

func (m FundamentalMode) String() string {
	switch m.Kind {
	case FundamentalFixed:
		return m.PitchClass.String()
	case FundamentalLowest:
		return "lowest"
	case FundamentalHighest:
		return "highest"
	case FundamentalLast:
		return "last"
	case FundamentalAutomatic:
		return "automatic"
	}
	return fmt.Sprintf("fundamental(%d)", int(m.Kind))
}

// ParseFundamentalMode accepts "lowest", "highest", "last", "automatic"
// (or "auto") and pitch class names for a fixed fundamental.
func ParseFundamentalMode(name string) (FundamentalMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lowest":
		return Lowest, nil
	case "highest":
		return Highest, nil
	case "last":
		return Last, nil
	case "auto", "automatic":
		return Automatic, nil
	}
	pc, err := tuning.ParsePitchClass(name)
	if err != nil {
		return FundamentalMode{}, fmt.Errorf("invalid fundamental mode %q: %w", name, err)
	}
	return Fixed(pc), nil
}

// FindFundamental guesses the harmonic root of an ascending note set from
// its fifths/fourths, then major thirds/minor sixths, then minor
// thirds/major sixths (assuming a major third below). Within a tier the
// last pair found wins; pairs are scanned from the top note down.
func FindFundamental(notes []int, previous tuning.PitchClass) tuning.PitchClass {
	fifth, third, minorThird := -1, -1, -1
	for i := len(notes) - 1; i >= 0; i-- {
		for j := i - 1; j >= 0; j-- {
			high, low := notes[i], notes[j]
			switch tuning.Mod12(high - low) {
			case 7:
				fifth = tuning.Mod12(low)
			case 5:
				fifth = tuning.Mod12(high)
			case 4:
				third = tuning.Mod12(low)
			case 8:
				third = tuning.Mod12(high)
			case 3:
				minorThird = tuning.Mod12(low - 4)
			case 9:
				minorThird = tuning.Mod12(high - 4)
			}
		}
	}
	switch {
	case fifth >= 0:
		return tuning.PitchClass(fifth)
	case third >= 0:
		return tuning.PitchClass(third)
	case minorThird >= 0:
		return tuning.PitchClass(minorThird)
	}
	return previous
}
