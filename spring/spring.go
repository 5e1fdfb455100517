package spring

import "math"

// maxAdjustedStrength bounds the relaxation gain; above it a single pass overshoots.
const maxAdjustedStrength = 0.6

// Spring pulls two particles toward a target separation in cents.
type Spring struct {
	a *Particle
	b *Particle

	restingLength    float64
	strength         float64
	adjustedStrength float64
	stiffness        float64
	stiffnessDirty   bool
	intervalClass    int
	enabled          bool
}

func newSpring(a, b *Particle, restingLength, strength, stiffness float64, intervalClass int) *Spring {
	s := &Spring{
		a:             a,
		b:             b,
		restingLength: restingLength,
		stiffness:     stiffness,
		intervalClass: intervalClass,
	}
	s.SetStrength(strength)
	return s
}

// SetStrength sets the user-facing strength in [0,1] and derives the
// warped relaxation gain from it.
func (s *Spring) SetStrength(strength float64) {
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	s.strength = strength
	s.adjustedStrength = adjustStrength(strength, s.stiffness)
	s.stiffnessDirty = false
}

// SetStiffness scales the relaxation gain; the gain is recomputed on the next relaxation.
func (s *Spring) SetStiffness(stiffness float64) {
	if stiffness < 0 {
		stiffness = 0
	}
	if stiffness > 1 {
		stiffness = 1
	}
	if stiffness != s.stiffness {
		s.stiffness = stiffness
		s.stiffnessDirty = true
	}
}

func adjustStrength(strength, stiffness float64) float64 {
	return maxAdjustedStrength * stiffness * (math.Pow(100, strength) - 1) / 99
}

// SatisfyConstraints relaxes the spring once toward its resting length.
func (s *Spring) SatisfyConstraints() {
	diff := s.b.position - s.a.position
	if diff == 0 {
		return
	}
	if s.stiffnessDirty {
		s.adjustedStrength = adjustStrength(s.strength, s.stiffness)
		s.stiffnessDirty = false
	}
	increment := (diff - s.restingLength) * s.adjustedStrength
	if !s.a.locked {
		s.a.ApplyForce(increment)
	}
	if !s.b.locked {
		s.b.ApplyOppositeForce(increment)
	}
}

func (s *Spring) A() *Particle           { return s.a }
func (s *Spring) B() *Particle           { return s.b }
func (s *Spring) RestingLength() float64 { return s.restingLength }
func (s *Spring) Strength() float64      { return s.strength }
func (s *Spring) Stiffness() float64     { return s.stiffness }
func (s *Spring) IntervalClass() int     { return s.intervalClass }
func (s *Spring) Enabled() bool          { return s.enabled }

// AdjustedStrength is the relaxation gain derived from strength and stiffness.
func (s *Spring) AdjustedStrength() float64 {
	if s.stiffnessDirty {
		return adjustStrength(s.strength, s.stiffness)
	}
	return s.adjustedStrength
}

// Length is the current separation b - a in cents.
func (s *Spring) Length() float64 { return s.b.position - s.a.position }
