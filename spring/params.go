package spring

import "github.com/cwbudde/algo-springtune/tuning"

const (
	NumNotes = 128

	MinRate = 5.0
	MaxRate = 400.0

	// NumIntervals indexes interval classes 0..12; 12 is the octave.
	NumIntervals = 13
)

// Params holds the control-plane settings of a spring tuning.
type Params struct {
	Rate float64 // simulation ticks per second
	Drag float64 // 0 = no damping, 1 = velocity discarded every tick

	IntervalStiffness float64
	TetherStiffness   float64

	IntervalScale       tuning.Scale
	TetherScale         tuning.Scale
	IntervalFundamental FundamentalMode
	TetherFundamental   tuning.PitchClass

	// Per interval class weight and local/fundamental override (true = fundamental).
	IntervalWeights [NumIntervals]float64
	UseFundamental  [NumIntervals]bool

	TetherWeight          float64
	TetherWeightSecondary float64
	FundamentalSetsTether bool

	// CustomTuning is consulted whenever a scale is tuning.Custom.
	CustomTuning [12]float64
}

// NewDefaultParams creates default parameters: just intervals over an
// equal-tempered tether, fundamental fixed at C.
func NewDefaultParams() *Params {
	p := &Params{
		Rate:                  100,
		Drag:                  0.15,
		IntervalStiffness:     1.0,
		TetherStiffness:       0.5,
		IntervalScale:         tuning.JustIntonation,
		TetherScale:           tuning.EqualTemperament,
		IntervalFundamental:   Fixed(0),
		TetherFundamental:     0,
		TetherWeight:          0.5,
		TetherWeightSecondary: 0.1,
	}
	for i := range p.IntervalWeights {
		p.IntervalWeights[i] = 0.5
	}
	return p
}

// Clone returns a copy of the params.
func (p *Params) Clone() *Params {
	if p == nil {
		return NewDefaultParams()
	}
	c := *p
	return &c
}

func clampRate(hz float64) float64 {
	if hz < MinRate {
		return MinRate
	}
	if hz > MaxRate {
		return MaxRate
	}
	return hz
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func validNote(note int) bool {
	return note >= 0 && note < NumNotes
}
