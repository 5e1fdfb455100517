package render

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/cwbudde/algo-approx"

	"github.com/cwbudde/algo-springtune/spring"
)

const (
	controlBlock = 64

	glideAngularFreq = 40.0
	glideDamping     = 1.0

	attackSeconds  = 0.005
	releaseSeconds = 0.12
	voiceGain      = 0.15
)

type voice struct {
	phase     float64
	freq      float64
	freqVel   float64
	inc       float64
	amp       float64
	releasing bool
	active    bool
	pan       float64
}

// Renderer auditions a spring tuning with one sine voice per held note. It
// advances the simulation in step with the rendered audio, so output is
// deterministic for a given event sequence.
type Renderer struct {
	sampleRate int
	a4         float64
	tuning     *spring.Tuning
	glide      harmonica.Spring

	samplesPerTick float64
	untilTick      float64
	ticks          int

	attackStep  float64
	releaseCoef float64

	voices [spring.NumNotes]voice
}

// NewRenderer creates a renderer for t. a4Hz <= 0 selects 440 Hz.
func NewRenderer(sampleRate int, a4Hz float64, t *spring.Tuning) *Renderer {
	if sampleRate < 8000 {
		sampleRate = 8000
	}
	if a4Hz <= 0 {
		a4Hz = 440
	}
	r := &Renderer{
		sampleRate:  sampleRate,
		a4:          a4Hz,
		tuning:      t,
		glide:       harmonica.NewSpring(harmonica.FPS(sampleRate/controlBlock), glideAngularFreq, glideDamping),
		attackStep:  1.0 / (attackSeconds * float64(sampleRate)),
		releaseCoef: math.Exp(math.Log(1e-3) / (releaseSeconds * float64(sampleRate))),
	}
	r.samplesPerTick = float64(sampleRate) / t.Rate()
	r.untilTick = r.samplesPerTick
	for n := range r.voices {
		r.voices[n].pan = 0.2 + 0.6*float64(n)/float64(spring.NumNotes-1)
	}
	return r
}

// Tuning returns the engine driven by the renderer.
func (r *Renderer) Tuning() *spring.Tuning { return r.tuning }

// Ticks is the number of simulation ticks run so far.
func (r *Renderer) Ticks() int { return r.ticks }

// NoteOn activates note in the tuning and starts its voice at the current tuned pitch.
func (r *Renderer) NoteOn(note int) {
	if note < 0 || note >= spring.NumNotes {
		return
	}
	r.tuning.AddNote(note)
	v := &r.voices[note]
	if !v.active {
		v.phase = 0
		v.amp = 0
	}
	v.active = true
	v.releasing = false
	v.freq = r.tuning.Frequency(note, r.a4)
	v.freqVel = 0
	v.inc = 2 * math.Pi * v.freq / float64(r.sampleRate)
}

// NoteOff removes note from the tuning and releases its voice.
func (r *Renderer) NoteOff(note int) {
	if note < 0 || note >= spring.NumNotes {
		return
	}
	r.tuning.RemoveNote(note)
	r.voices[note].releasing = true
}

// SetRate changes the simulation rate used while rendering.
func (r *Renderer) SetRate(hz float64) {
	r.tuning.SetRate(hz)
	r.samplesPerTick = float64(r.sampleRate) / r.tuning.Rate()
	if r.untilTick > r.samplesPerTick {
		r.untilTick = r.samplesPerTick
	}
}

// Process renders numFrames of interleaved stereo audio.
func (r *Renderer) Process(numFrames int) []float32 {
	out := make([]float32, numFrames*2)
	for start := 0; start < numFrames; start += controlBlock {
		n := controlBlock
		if start+n > numFrames {
			n = numFrames - start
		}
		r.advance(n)
		r.renderBlock(out[start*2:(start+n)*2], n)
	}
	return out
}

// advance runs every simulation tick due within the next n frames.
func (r *Renderer) advance(n int) {
	r.untilTick -= float64(n)
	for r.untilTick <= 0 {
		r.tuning.Simulate()
		r.ticks++
		r.untilTick += r.samplesPerTick
	}
}

func (r *Renderer) renderBlock(out []float32, n int) {
	for note := range r.voices {
		v := &r.voices[note]
		if !v.active {
			continue
		}
		target := r.tuning.Frequency(note, r.a4)
		startInc := v.inc
		v.freq, v.freqVel = r.glide.Update(v.freq, v.freqVel, target)
		endInc := 2 * math.Pi * v.freq / float64(r.sampleRate)
		step := 1.0
		if startInc > 0 && endInc > 0 && endInc != startInc {
			step = float64(approx.FastExp(float32(math.Log(endInc/startInc) / float64(n))))
		}

		inc := startInc
		left := voiceGain * (1 - v.pan)
		right := voiceGain * v.pan
		for i := 0; i < n; i++ {
			if v.releasing {
				v.amp *= r.releaseCoef
			} else if v.amp < 1 {
				v.amp = math.Min(1, v.amp+r.attackStep)
			}
			s := math.Sin(v.phase) * v.amp
			out[i*2] += float32(s * left)
			out[i*2+1] += float32(s * right)
			v.phase += inc
			if v.phase > 2*math.Pi {
				v.phase -= 2 * math.Pi
			}
			inc *= step
		}
		v.inc = endInc
		if v.releasing && v.amp < 1e-4 {
			v.active = false
		}
	}
}
