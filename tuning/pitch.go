package tuning

import (
	"fmt"
	"strings"
)

// PitchClass is a note name modulo the octave, 0 = C.
type PitchClass int

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flatNames = map[string]PitchClass{"DB": 1, "EB": 3, "GB": 6, "AB": 8, "BB": 10}

// PitchClassOf returns the pitch class of a MIDI note.
func PitchClassOf(note int) PitchClass {
	return PitchClass(Mod12(note))
}

// Mod12 is the non-negative remainder of n modulo 12.
func Mod12(n int) int {
	m := n % 12
	if m < 0 {
		m += 12
	}
	return m
}

func (p PitchClass) String() string {
	return pitchClassNames[Mod12(int(p))]
}

// ParsePitchClass accepts sharp or flat note names (C, C#, Db, ...).
func ParsePitchClass(name string) (PitchClass, error) {
	v := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range pitchClassNames {
		if n == v {
			return PitchClass(i), nil
		}
	}
	if pc, ok := flatNames[v]; ok {
		return pc, nil
	}
	return 0, fmt.Errorf("unknown pitch class %q", name)
}

// NoteName formats a MIDI note as e.g. "C4".
func NoteName(note int) string {
	return fmt.Sprintf("%s%d", PitchClassOf(note), note/12-1)
}
