package spring

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-springtune/tuning"
)

// Tuning is the adaptive intonation engine. Every active note owns a live
// particle that is pulled toward pure intervals by springs to the other
// active notes and toward the tether scale by a tether spring.
//
// All methods are safe for concurrent use. Simulate, note changes and
// parameter changes serialize on one lock; readers share it.
type Tuning struct {
	mu sync.RWMutex

	params Params

	live          [NumNotes]Particle
	tether        [NumNotes]Particle
	tetherSprings [NumNotes]Spring

	// Interval springs live for the process lifetime once created; enabled
	// holds the keys of the ones currently relaxed, in insertion order.
	springs map[uint32]*Spring
	enabled []uint32

	fundamental tuning.PitchClass
	lastAdded   int

	intervalOffsets [12]float64
	tetherOffsets   [12]float64
}

// NewTuning creates an engine with all notes off. A nil params uses NewDefaultParams.
func NewTuning(params *Params) *Tuning {
	t := &Tuning{
		params:    *params.Clone(),
		springs:   make(map[uint32]*Spring),
		enabled:   make([]uint32, 0, 64),
		lastAdded: -1,
	}
	t.params.Rate = clampRate(t.params.Rate)
	t.params.Drag = clamp01(t.params.Drag)
	for i := 0; i < NumNotes; i++ {
		rest := 100.0 * float64(i)
		t.tether[i] = newParticle(i, rest, true)
		t.live[i] = newParticle(i, rest, false)
		t.tetherSprings[i] = *newSpring(&t.tether[i], &t.live[i], 0, t.params.TetherWeight, t.params.TetherStiffness, 0)
	}
	t.fundamental = t.params.IntervalFundamental.Select(nil, -1, 0)
	t.loadOffsets()
	t.applyTetherTuning()
	t.updateTetherWeights()
	return t
}

func pairKey(n1, n2 int) uint32 {
	hi, lo := n1, n2
	if lo > hi {
		hi, lo = lo, hi
	}
	return uint32(hi)<<16 | uint32(lo)
}

// intervalClass is the semitone distance folded into 1..12; 0 only for a unison.
func intervalClass(lo, hi int) int {
	d := hi - lo
	if d < 0 {
		d = -d
	}
	k := d % 12
	if k == 0 && d != 0 {
		k = 12
	}
	return k
}

// AddNote activates note and connects it to every other active note.
// Adding an active note again is a no-op apart from fundamental selection.
func (t *Tuning) AddNote(note int) {
	if !validNote(note) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	p := &t.live[note]
	if !p.enabled {
		p.Reset()
		p.enabled = true
	}
	t.tether[note].enabled = true
	t.lastAdded = note

	t.updateFundamental()

	for other := 0; other < NumNotes; other++ {
		if other != note && t.live[other].enabled {
			t.enableIntervalSpring(note, other)
		}
	}
	t.tetherSprings[note].enabled = true
	t.updateTetherWeights()

	if t.params.IntervalFundamental.Dynamic() {
		t.retuneIntervalSprings()
	}
}

// RemoveNote deactivates note and disables every interval spring touching it.
func (t *Tuning) RemoveNote(note int) {
	if !validNote(note) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.live[note].enabled = false
	t.tether[note].enabled = false

	prev := t.fundamental
	if t.params.IntervalFundamental.Dynamic() {
		t.updateFundamental()
	}

	kept := t.enabled[:0]
	for _, key := range t.enabled {
		s := t.springs[key]
		if s.a.note == note || s.b.note == note {
			s.enabled = false
			continue
		}
		kept = append(kept, key)
	}
	t.enabled = kept

	t.tetherSprings[note].enabled = false
	t.updateTetherWeights()

	if t.fundamental != prev {
		t.retuneIntervalSprings()
	}
}

// Reset turns every note off and returns all particles to rest.
func (t *Tuning) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, key := range t.enabled {
		t.springs[key].enabled = false
	}
	t.enabled = t.enabled[:0]
	for i := 0; i < NumNotes; i++ {
		t.live[i].enabled = false
		t.live[i].Reset()
		t.tether[i].enabled = false
		t.tetherSprings[i].enabled = false
	}
	t.lastAdded = -1
}

func (t *Tuning) enableIntervalSpring(n1, n2 int) {
	lo, hi := n1, n2
	if lo > hi {
		lo, hi = hi, lo
	}
	key := pairKey(lo, hi)
	k := intervalClass(lo, hi)
	s, ok := t.springs[key]
	if !ok {
		s = newSpring(&t.live[lo], &t.live[hi], 0, t.params.IntervalWeights[k], t.params.IntervalStiffness, k)
		t.springs[key] = s
	} else {
		s.SetStiffness(t.params.IntervalStiffness)
		if s.strength != clamp01(t.params.IntervalWeights[k]) {
			s.SetStrength(t.params.IntervalWeights[k])
		}
	}
	s.restingLength = t.restingLength(lo, hi, k)
	if !s.enabled {
		s.enabled = true
		t.enabled = append(t.enabled, key)
	}
}

func (t *Tuning) activeNotes() []int {
	notes := make([]int, 0, 16)
	for i := 0; i < NumNotes; i++ {
		if t.live[i].enabled {
			notes = append(notes, i)
		}
	}
	return notes
}

func (t *Tuning) updateFundamental() {
	t.fundamental = t.params.IntervalFundamental.Select(t.activeNotes(), t.lastAdded, t.fundamental)
}

// restingLength is the target size in cents of the interval lo..hi of class k.
func (t *Tuning) restingLength(lo, hi, k int) float64 {
	if t.params.UseFundamental[k] {
		f := int(t.fundamental)
		upper := 100.0 * (float64(hi) + t.intervalOffsets[tuning.Mod12(hi-f)])
		lower := 100.0 * (float64(lo) + t.intervalOffsets[tuning.Mod12(lo-f)])
		return math.Abs(upper - lower)
	}
	span := math.Abs(t.live[hi].restPosition - t.live[lo].restPosition)
	return span + 100.0*(t.intervalOffsets[k%12]-t.tetherOffsets[k%12])
}

func (t *Tuning) retuneIntervalSprings() {
	for _, key := range t.enabled {
		s := t.springs[key]
		s.restingLength = t.restingLength(s.a.note, s.b.note, s.intervalClass)
	}
}

func (t *Tuning) scaleOffsets(s tuning.Scale) [12]float64 {
	if s == tuning.Custom {
		return t.params.CustomTuning
	}
	return tuning.Offsets(s)
}

func (t *Tuning) loadOffsets() {
	t.intervalOffsets = t.scaleOffsets(t.params.IntervalScale)
	t.tetherOffsets = t.scaleOffsets(t.params.TetherScale)
}

// applyTetherTuning moves each tether spring's resting length and each live
// particle's rest position onto the tether scale. Tether particles stay on
// the equal-tempered grid.
func (t *Tuning) applyTetherTuning() {
	tf := int(t.params.TetherFundamental)
	for i := 0; i < NumNotes; i++ {
		rl := 100.0 * t.tetherOffsets[tuning.Mod12(i-tf)]
		t.tetherSprings[i].restingLength = rl
		p := &t.live[i]
		p.setRestPosition(t.tether[i].position + rl)
		if !p.enabled {
			p.Reset()
		}
	}
}

func (t *Tuning) updateTetherWeights() {
	for i := range t.tetherSprings {
		w := t.params.TetherWeight
		if t.params.FundamentalSetsTether && tuning.PitchClassOf(i) != t.fundamental {
			w = t.params.TetherWeightSecondary
		}
		ts := &t.tetherSprings[i]
		if ts.strength != clamp01(w) {
			ts.SetStrength(w)
		}
	}
}

// Simulate advances the system by one tick: integrate live particles, then
// relax tether springs, then interval springs, one pass each.
func (t *Tuning) Simulate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	drag := 1.0 - t.params.Drag
	for i := range t.live {
		t.live[i].Integrate(drag)
	}
	for i := range t.tetherSprings {
		if t.tetherSprings[i].enabled {
			t.tetherSprings[i].SatisfyConstraints()
		}
	}
	for _, key := range t.enabled {
		t.springs[key].SatisfyConstraints()
	}
}

// Frequency converts the note's current position to Hz for the given A4
// reference. Out-of-range notes return 0.
func (t *Tuning) Frequency(note int, a4Hz float64) float64 {
	if !validNote(note) {
		return 0
	}
	t.mu.RLock()
	cents := t.live[note].position
	t.mu.RUnlock()
	return CentsToFrequency(cents, a4Hz)
}

// CentsToFrequency maps an absolute position (6900 = A4) to Hz.
func CentsToFrequency(cents, a4Hz float64) float64 {
	return a4Hz * math.Exp2((cents/100.0-69.0)/12.0)
}

// Cents returns the note's current absolute position in cents.
func (t *Tuning) Cents(note int) float64 {
	if !validNote(note) {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live[note].position
}

// Deviation returns how far the note currently sits from its equal-tempered pitch, in cents.
func (t *Tuning) Deviation(note int) float64 {
	if !validNote(note) {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live[note].position - t.tether[note].position
}

// Particles returns a snapshot of the live particles.
func (t *Tuning) Particles() [NumNotes]Particle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live
}

// ActiveNotes returns the enabled notes in ascending order.
func (t *Tuning) ActiveNotes() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeNotes()
}

// Fundamental returns the pitch class currently used for fundamental-relative intervals.
func (t *Tuning) Fundamental() tuning.PitchClass {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fundamental
}

// IntervalSpringCount is the number of interval springs ever created.
func (t *Tuning) IntervalSpringCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.springs)
}

// HasIntervalSpring reports whether an enabled spring connects n1 and n2.
func (t *Tuning) HasIntervalSpring(n1, n2 int) bool {
	if !validNote(n1) || !validNote(n2) {
		return false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.springs[pairKey(n1, n2)]
	return ok && s.enabled
}

// SpringInfo describes one enabled interval spring.
type SpringInfo struct {
	Low, High     int
	IntervalClass int
	RestingLength float64
	Length        float64
	Strength      float64
}

// EnabledIntervalSprings lists the enabled interval springs in relaxation order.
func (t *Tuning) EnabledIntervalSprings() []SpringInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]SpringInfo, 0, len(t.enabled))
	for _, key := range t.enabled {
		s := t.springs[key]
		out = append(out, SpringInfo{
			Low:           s.a.note,
			High:          s.b.note,
			IntervalClass: s.intervalClass,
			RestingLength: s.restingLength,
			Length:        s.Length(),
			Strength:      s.strength,
		})
	}
	return out
}

// TetherStrength returns the strength of the note's tether spring.
func (t *Tuning) TetherStrength(note int) float64 {
	if !validNote(note) {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tetherSprings[note].strength
}
