package main

import (
	"testing"

	"github.com/cwbudde/algo-springtune/spring"
	"github.com/cwbudde/algo-springtune/tuning"
)

func TestParseChords(t *testing.T) {
	chords, err := parseChords("C4,E4,G4; 57,60,64 ;")
	if err != nil {
		t.Fatalf("parseChords: %v", err)
	}
	if len(chords) != 2 || len(chords[0]) != 3 || chords[0][1] != 64 || chords[1][0] != 57 {
		t.Fatalf("chords = %v", chords)
	}
	for _, raw := range []string{"", "C4", "C4,X9", ";;"} {
		if _, err := parseChords(raw); err == nil {
			t.Fatalf("parseChords(%q) expected error", raw)
		}
	}
}

func TestEvaluateEqualTemperamentIsExact(t *testing.T) {
	p := spring.NewDefaultParams()
	p.IntervalScale = tuning.EqualTemperament
	m, err := evaluate(p, [][]int{{60, 64, 67}}, 50, 1)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if m.Score != 0 || m.Drift != 0 || m.Ticks != 50 {
		t.Fatalf("metrics = %+v want zero score over 50 ticks", m)
	}
}

func TestEvaluateStifferIntervalsReduceError(t *testing.T) {
	chords := [][]int{{60, 64, 67}}
	soft := spring.NewDefaultParams()
	soft.IntervalStiffness = 0.05
	stiff := spring.NewDefaultParams()
	stiff.IntervalStiffness = 1
	stiff.TetherStiffness = 0.05

	ms, err := evaluate(soft, chords, 200, 0)
	if err != nil {
		t.Fatalf("evaluate soft: %v", err)
	}
	mh, err := evaluate(stiff, chords, 200, 0)
	if err != nil {
		t.Fatalf("evaluate stiff: %v", err)
	}
	if mh.FinalIntervalError >= ms.FinalIntervalError {
		t.Fatalf("stiff error %.3f not below soft %.3f", mh.FinalIntervalError, ms.FinalIntervalError)
	}
	if ms.IntervalError <= 0 {
		t.Fatalf("just triad should start out of tune, got %.3f", ms.IntervalError)
	}
}
