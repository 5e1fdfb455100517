package spring

import "github.com/cwbudde/algo-springtune/tuning"

// Params returns a copy of the current parameters.
func (t *Tuning) Params() *Params {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := t.params
	return &p
}

// SetParams replaces every parameter at once and retunes the active graph.
// A new Rate reaches a driving Scheduler like SetRate does.
func (t *Tuning) SetParams(p *Params) {
	next := *p.Clone()
	next.Rate = clampRate(next.Rate)
	next.Drag = clamp01(next.Drag)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.params = next
	for _, s := range t.springs {
		s.SetStiffness(next.IntervalStiffness)
		s.SetStrength(next.IntervalWeights[s.intervalClass])
	}
	for i := range t.tetherSprings {
		t.tetherSprings[i].SetStiffness(next.TetherStiffness)
	}
	t.loadOffsets()
	t.applyTetherTuning()
	t.updateFundamental()
	t.updateTetherWeights()
	t.retuneIntervalSprings()
}

// Rate is the configured simulation rate in Hz.
func (t *Tuning) Rate() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.params.Rate
}

// SetRate stores the simulation rate, clamped to [MinRate, MaxRate]. A
// Scheduler driving t picks it up after its next tick.
func (t *Tuning) SetRate(hz float64) {
	t.mu.Lock()
	t.params.Rate = clampRate(hz)
	t.mu.Unlock()
}

// SetDrag sets the velocity damping in [0,1].
func (t *Tuning) SetDrag(drag float64) {
	t.mu.Lock()
	t.params.Drag = clamp01(drag)
	t.mu.Unlock()
}

// SetIntervalStiffness sets the stiffness of every interval spring.
func (t *Tuning) SetIntervalStiffness(stiffness float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.IntervalStiffness = clamp01(stiffness)
	for _, s := range t.springs {
		s.SetStiffness(t.params.IntervalStiffness)
	}
}

// SetTetherStiffness sets the stiffness of every tether spring.
func (t *Tuning) SetTetherStiffness(stiffness float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.TetherStiffness = clamp01(stiffness)
	for i := range t.tetherSprings {
		t.tetherSprings[i].SetStiffness(t.params.TetherStiffness)
	}
}

// SetIntervalScale selects the table interval springs are tuned to.
func (t *Tuning) SetIntervalScale(s tuning.Scale) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.IntervalScale = s
	t.loadOffsets()
	t.retuneIntervalSprings()
}

// SetTetherScale selects the anchor scale.
func (t *Tuning) SetTetherScale(s tuning.Scale) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.TetherScale = s
	t.loadOffsets()
	t.applyTetherTuning()
	t.retuneIntervalSprings()
}

// SetIntervalFundamental selects how the fundamental for interval tuning is chosen.
func (t *Tuning) SetIntervalFundamental(mode FundamentalMode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.IntervalFundamental = mode
	t.updateFundamental()
	t.updateTetherWeights()
	t.retuneIntervalSprings()
}

// SetTetherFundamental sets the pitch class the tether scale is rooted on.
func (t *Tuning) SetTetherFundamental(pc tuning.PitchClass) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.TetherFundamental = tuning.PitchClass(tuning.Mod12(int(pc)))
	t.applyTetherTuning()
	t.retuneIntervalSprings()
}

// SetIntervalWeight sets the strength of every spring of interval class k (1..12).
func (t *Tuning) SetIntervalWeight(k int, weight float64) {
	if k < 0 || k >= NumIntervals {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.IntervalWeights[k] = clamp01(weight)
	for _, s := range t.springs {
		if s.intervalClass == k {
			s.SetStrength(weight)
		}
	}
}

// SetUseFundamental switches interval class k between local tuning (false)
// and tuning relative to the active fundamental (true).
func (t *Tuning) SetUseFundamental(k int, use bool) {
	if k < 0 || k >= NumIntervals {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.UseFundamental[k] = use
	t.retuneIntervalSprings()
}

// SetTetherWeight sets the tether strength of every note, or only of
// fundamental notes while FundamentalSetsTether is on.
func (t *Tuning) SetTetherWeight(weight float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.TetherWeight = clamp01(weight)
	t.updateTetherWeights()
}

// SetTetherWeightSecondary sets the tether weight of non-fundamental notes
// while FundamentalSetsTether is on.
func (t *Tuning) SetTetherWeightSecondary(weight float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.TetherWeightSecondary = clamp01(weight)
	t.updateTetherWeights()
}

// SetFundamentalSetsTether toggles the secondary tether weight for notes
// outside the fundamental's pitch class.
func (t *Tuning) SetFundamentalSetsTether(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.FundamentalSetsTether = on
	t.updateTetherWeights()
}

// SetCustomTuning installs the offsets (fractions of a semitone) used by tuning.Custom.
func (t *Tuning) SetCustomTuning(offsets [12]float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params.CustomTuning = offsets
	if t.params.IntervalScale != tuning.Custom && t.params.TetherScale != tuning.Custom {
		return
	}
	t.loadOffsets()
	t.applyTetherTuning()
	t.retuneIntervalSprings()
}
