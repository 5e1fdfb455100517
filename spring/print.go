package spring

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/algo-springtune/tuning"
)

// Print writes the current parameters, active particles and interval springs.
func (t *Tuning) Print(w io.Writer) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p := &t.params
	fmt.Fprintf(w, "rate=%.1fHz drag=%.3f stiffness interval=%.3f tether=%.3f\n",
		p.Rate, p.Drag, p.IntervalStiffness, p.TetherStiffness)
	fmt.Fprintf(w, "interval scale=%s fundamental=%s (active %s)\n",
		p.IntervalScale, p.IntervalFundamental, t.fundamental)
	fmt.Fprintf(w, "tether scale=%s fundamental=%s weight=%.3f secondary=%.3f fundamental-sets-tether=%t\n",
		p.TetherScale, p.TetherFundamental, p.TetherWeight, p.TetherWeightSecondary, p.FundamentalSetsTether)

	fmt.Fprintf(w, "interval weights:")
	for k := 1; k < NumIntervals; k++ {
		mode := "L"
		if p.UseFundamental[k] {
			mode = "F"
		}
		fmt.Fprintf(w, " %d=%.2f%s", k, p.IntervalWeights[k], mode)
	}
	fmt.Fprintln(w)

	for i := range t.live {
		pt := &t.live[i]
		if !pt.enabled {
			continue
		}
		fmt.Fprintf(w, "  %-4s note=%3d pos=%9.3f rest=%9.3f dev=%+7.3f tether=%.3f\n",
			tuning.NoteName(i), i, pt.position, pt.restPosition,
			pt.position-t.tether[i].position, t.tetherSprings[i].strength)
	}
	for _, key := range t.enabled {
		s := t.springs[key]
		fmt.Fprintf(w, "  spring %-4s-%-4s k=%2d rest=%8.3f len=%8.3f strength=%.2f\n",
			tuning.NoteName(s.a.note), tuning.NoteName(s.b.note), s.intervalClass,
			s.restingLength, s.Length(), s.strength)
	}
}

func (t *Tuning) String() string {
	var b strings.Builder
	t.Print(&b)
	return b.String()
}
