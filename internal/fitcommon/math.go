package fitcommon

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-springtune/tuning"
)

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// NoteEvent holds one note of a timed sequence; End < 0 means held to the end.
type NoteEvent struct {
	Note  int
	Start float64
	End   float64
}

// ParseNote accepts a MIDI number ("64") or a note name with octave ("E4", "Bb3").
func ParseNote(raw string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, fmt.Errorf("empty note")
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 127 {
			return 0, fmt.Errorf("note %d out of range 0..127", n)
		}
		return n, nil
	}
	split := len(v)
	for split > 0 && (v[split-1] >= '0' && v[split-1] <= '9' || v[split-1] == '-') {
		split--
	}
	if split == 0 || split == len(v) {
		return 0, fmt.Errorf("invalid note %q", raw)
	}
	pc, err := tuning.ParsePitchClass(v[:split])
	if err != nil {
		return 0, fmt.Errorf("invalid note %q: %w", raw, err)
	}
	octave, err := strconv.Atoi(v[split:])
	if err != nil {
		return 0, fmt.Errorf("invalid octave in %q", raw)
	}
	n := (octave+1)*12 + int(pc)
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("note %q out of range", raw)
	}
	return n, nil
}

// ParseNoteEvents parses a comma-separated list of notes, each optionally
// timed as note@start or note@start:end (seconds).
func ParseNoteEvents(raw string) ([]NoteEvent, error) {
	var out []NoteEvent
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		ev := NoteEvent{End: -1}
		noteStr, timing, timed := strings.Cut(item, "@")
		n, err := ParseNote(noteStr)
		if err != nil {
			return nil, err
		}
		ev.Note = n
		if timed {
			startStr, endStr, hasEnd := strings.Cut(timing, ":")
			if ev.Start, err = strconv.ParseFloat(strings.TrimSpace(startStr), 64); err != nil || ev.Start < 0 {
				return nil, fmt.Errorf("invalid start time in %q", item)
			}
			if hasEnd {
				if ev.End, err = strconv.ParseFloat(strings.TrimSpace(endStr), 64); err != nil || ev.End <= ev.Start {
					return nil, fmt.Errorf("invalid end time in %q", item)
				}
			}
		}
		out = append(out, ev)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return out, nil
}

// MeanAbs is the mean absolute value of xs, 0 for an empty slice.
func MeanAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += math.Abs(x)
	}
	return sum / float64(len(xs))
}
