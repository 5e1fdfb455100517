package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-springtune/internal/fitcommon"
	"github.com/cwbudde/algo-springtune/spring"
)

type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

// parseKnobGroups parses a comma-separated string of group names.
// Valid groups: dynamics, weights, intervals.
func parseKnobGroups(raw string) (map[string]bool, error) {
	valid := map[string]bool{"dynamics": true, "weights": true, "intervals": true}
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown knob group %q (valid: dynamics, weights, intervals)", s)
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no knob groups specified")
	}
	return groups, nil
}

func initCandidate(base *spring.Params, groups map[string]bool) ([]knobDef, candidate) {
	defs := make([]knobDef, 0, 20)
	vals := make([]float64, 0, 20)
	addKnob := func(def knobDef, val float64) {
		defs = append(defs, def)
		vals = append(vals, fitcommon.Clamp(val, def.Min, def.Max))
	}

	if groups["dynamics"] {
		addKnob(knobDef{Name: "drag", Min: 0.0, Max: 0.6}, base.Drag)
		addKnob(knobDef{Name: "interval_stiffness", Min: 0.05, Max: 1.0}, base.IntervalStiffness)
		addKnob(knobDef{Name: "tether_stiffness", Min: 0.05, Max: 1.0}, base.TetherStiffness)
	}
	if groups["weights"] {
		addKnob(knobDef{Name: "tether_weight", Min: 0.0, Max: 1.0}, base.TetherWeight)
		addKnob(knobDef{Name: "tether_weight_secondary", Min: 0.0, Max: 1.0}, base.TetherWeightSecondary)
	}
	if groups["intervals"] {
		for k := 1; k < spring.NumIntervals; k++ {
			addKnob(knobDef{Name: fmt.Sprintf("interval.%d.weight", k), Min: 0.0, Max: 1.0}, base.IntervalWeights[k])
		}
	}
	return defs, candidate{Vals: vals}
}

func applyCandidate(base *spring.Params, defs []knobDef, c candidate) *spring.Params {
	p := base.Clone()
	for i, d := range defs {
		v := c.Vals[i]
		switch d.Name {
		case "drag":
			p.Drag = v
		case "interval_stiffness":
			p.IntervalStiffness = v
		case "tether_stiffness":
			p.TetherStiffness = v
		case "tether_weight":
			p.TetherWeight = v
		case "tether_weight_secondary":
			p.TetherWeightSecondary = v
		default:
			var k int
			if _, err := fmt.Sscanf(d.Name, "interval.%d.weight", &k); err == nil && k >= 0 && k < spring.NumIntervals {
				p.IntervalWeights[k] = v
			}
		}
	}
	return p
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = fitcommon.Clamp(pos[i], 0, 1)
		}
		v := defs[i].Min + x*(defs[i].Max-defs[i].Min)
		if defs[i].IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}
