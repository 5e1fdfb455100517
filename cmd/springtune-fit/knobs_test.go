package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-springtune/preset"
	"github.com/cwbudde/algo-springtune/spring"
)

func TestParseKnobGroups(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]bool
		wantErr bool
	}{
		{name: "single group", input: "dynamics", want: map[string]bool{"dynamics": true}},
		{name: "all groups", input: "dynamics,weights,intervals", want: map[string]bool{"dynamics": true, "weights": true, "intervals": true}},
		{name: "with whitespace", input: " weights , intervals ", want: map[string]bool{"weights": true, "intervals": true}},
		{name: "invalid group", input: "dynamics,bogus", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseKnobGroups(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseKnobGroups(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseKnobGroups(%q) unexpected error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
			for k := range tt.want {
				if !got[k] {
					t.Fatalf("missing group %q in %v", k, got)
				}
			}
		})
	}
}

func TestInitCandidateKnobCounts(t *testing.T) {
	base := spring.NewDefaultParams()
	defs, cand := initCandidate(base, map[string]bool{"dynamics": true, "weights": true, "intervals": true})
	if len(defs) != 3+2+12 {
		t.Fatalf("defs len = %d, want 17", len(defs))
	}
	if len(cand.Vals) != len(defs) {
		t.Fatalf("vals len = %d, want %d", len(cand.Vals), len(defs))
	}
	if cand.Vals[0] != base.Drag {
		t.Fatalf("drag initial value = %f want %f", cand.Vals[0], base.Drag)
	}
}

func TestApplyCandidateSetsParams(t *testing.T) {
	base := spring.NewDefaultParams()
	defs, cand := initCandidate(base, map[string]bool{"dynamics": true, "weights": true, "intervals": true})
	for i := range cand.Vals {
		cand.Vals[i] = defs[i].Max
	}
	p := applyCandidate(base, defs, cand)
	if p.Drag != 0.6 || p.IntervalStiffness != 1 || p.TetherStiffness != 1 {
		t.Fatalf("dynamics not applied: %+v", p)
	}
	if p.TetherWeight != 1 || p.TetherWeightSecondary != 1 {
		t.Fatalf("weights not applied: %f %f", p.TetherWeight, p.TetherWeightSecondary)
	}
	for k := 1; k < spring.NumIntervals; k++ {
		if p.IntervalWeights[k] != 1 {
			t.Fatalf("interval %d weight = %f", k, p.IntervalWeights[k])
		}
	}
	if p.IntervalWeights[0] != base.IntervalWeights[0] {
		t.Fatalf("unison weight changed")
	}
	if base.Drag != spring.NewDefaultParams().Drag {
		t.Fatalf("base params mutated")
	}
}

func TestFromNormalizedMapsRange(t *testing.T) {
	defs := []knobDef{
		{Name: "a", Min: 0, Max: 10},
		{Name: "b", Min: 1, Max: 3, IsInt: true},
	}
	c := fromNormalized([]float64{0.25, 0.8}, defs)
	if c.Vals[0] != 2.5 || c.Vals[1] != 3 {
		t.Fatalf("vals = %v", c.Vals)
	}
	c = fromNormalized([]float64{-1}, defs)
	if c.Vals[0] != 0 || c.Vals[1] != 1 {
		t.Fatalf("clamped vals = %v", c.Vals)
	}
}

func TestWriteOutputsAndResume(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "presets", "fitted.json")
	base := spring.NewDefaultParams()
	defs, cand := initCandidate(base, map[string]bool{"dynamics": true})
	cand.Vals[0] = 0.3

	rep := runReport{BestMetrics: Metrics{Score: 1.5}}
	if err := writeOutputs(out, "", rep, applyCandidate(base, defs, cand), defs, cand); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	p, err := preset.LoadJSON(out)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if math.Abs(p.Drag-0.3) > 1e-12 {
		t.Fatalf("preset drag = %f want 0.3", p.Drag)
	}

	_, fallback := initCandidate(base, map[string]bool{"dynamics": true})
	got, ok, err := loadCandidateFromReport(out+".report.json", defs, fallback)
	if err != nil || !ok {
		t.Fatalf("loadCandidateFromReport ok=%v err=%v", ok, err)
	}
	if got.Vals[0] != 0.3 {
		t.Fatalf("resumed drag = %f", got.Vals[0])
	}

	if _, ok, err := loadCandidateFromReport(filepath.Join(dir, "missing.json"), defs, fallback); ok || err != nil {
		t.Fatalf("missing report: ok=%v err=%v", ok, err)
	}
}
