package spring

// Particle is a one-dimensional mass point holding a pitch position in cents.
type Particle struct {
	position     float64
	restPosition float64
	prevPosition float64
	enabled      bool
	locked       bool
	note         int
}

func newParticle(note int, rest float64, locked bool) Particle {
	return Particle{
		position:     rest,
		restPosition: rest,
		prevPosition: rest,
		locked:       locked,
		note:         note,
	}
}

// Integrate performs one Verlet step. Disabled and locked particles do not move.
func (p *Particle) Integrate(drag float64) {
	if !p.enabled || p.locked {
		return
	}
	velocity := (p.position - p.prevPosition) * drag
	p.prevPosition = p.position
	p.position += velocity
}

// ApplyForce shifts the position by delta cents.
func (p *Particle) ApplyForce(delta float64) {
	p.position += delta
}

// ApplyOppositeForce shifts the position by -delta cents.
func (p *Particle) ApplyOppositeForce(delta float64) {
	p.position -= delta
}

// Reset moves the particle to its rest position with zero velocity.
func (p *Particle) Reset() {
	p.position = p.restPosition
	p.prevPosition = p.restPosition
}

func (p *Particle) setRestPosition(cents float64) {
	p.restPosition = cents
}

func (p Particle) Position() float64     { return p.position }
func (p Particle) RestPosition() float64 { return p.restPosition }
func (p Particle) Enabled() bool         { return p.enabled }
func (p Particle) Locked() bool          { return p.locked }
func (p Particle) Note() int             { return p.note }

// Octave is the MIDI octave of the particle's note (C4 = 60).
func (p Particle) Octave() int { return p.note/12 - 1 }
