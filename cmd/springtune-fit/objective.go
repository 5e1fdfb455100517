package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-springtune/internal/fitcommon"
	"github.com/cwbudde/algo-springtune/spring"
)

// unstableCents bounds how far an interval may stray before a run counts as diverged.
const unstableCents = 1200.0

// Metrics summarises one simulated progression.
type Metrics struct {
	Score              float64 `json:"score"`
	IntervalError      float64 `json:"interval_error_cents"`
	FinalIntervalError float64 `json:"final_interval_error_cents"`
	Drift              float64 `json:"drift_cents"`
	Ticks              int     `json:"ticks"`
}

// parseChords parses chords separated by ';', each a comma list of notes.
func parseChords(raw string) ([][]int, error) {
	var out [][]int
	for _, chord := range strings.Split(raw, ";") {
		chord = strings.TrimSpace(chord)
		if chord == "" {
			continue
		}
		var notes []int
		for _, item := range strings.Split(chord, ",") {
			if strings.TrimSpace(item) == "" {
				continue
			}
			n, err := fitcommon.ParseNote(item)
			if err != nil {
				return nil, err
			}
			notes = append(notes, n)
		}
		if len(notes) < 2 {
			return nil, fmt.Errorf("chord %q needs at least two notes", chord)
		}
		out = append(out, notes)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no chords given")
	}
	return out, nil
}

// evaluate plays chords in sequence for ticksPerChord ticks each. The score
// is the interval error averaged over every tick plus driftWeight times the
// final mean deviation from equal temperament.
func evaluate(p *spring.Params, chords [][]int, ticksPerChord int, driftWeight float64) (Metrics, error) {
	t := spring.NewTuning(p)
	var m Metrics
	var errSum float64
	for _, chord := range chords {
		for _, n := range t.ActiveNotes() {
			t.RemoveNote(n)
		}
		for _, n := range chord {
			t.AddNote(n)
		}
		for i := 0; i < ticksPerChord; i++ {
			t.Simulate()
			e, err := intervalError(t)
			if err != nil {
				return Metrics{}, fmt.Errorf("tick %d: %w", m.Ticks, err)
			}
			errSum += e
			m.Ticks++
			m.FinalIntervalError = e
		}
	}
	if m.Ticks > 0 {
		m.IntervalError = errSum / float64(m.Ticks)
	}

	var sum float64
	active := t.ActiveNotes()
	for _, n := range active {
		sum += t.Deviation(n)
	}
	if len(active) > 0 {
		m.Drift = math.Abs(sum / float64(len(active)))
	}
	m.Score = m.IntervalError + driftWeight*m.Drift
	return m, nil
}

func intervalError(t *spring.Tuning) (float64, error) {
	springs := t.EnabledIntervalSprings()
	errs := make([]float64, 0, len(springs))
	for _, s := range springs {
		e := s.Length - s.RestingLength
		if math.IsNaN(e) || math.Abs(e) > unstableCents {
			return 0, fmt.Errorf("spring %d-%d diverged", s.Low, s.High)
		}
		errs = append(errs, e)
	}
	return fitcommon.MeanAbs(errs), nil
}
