package spring

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Stepper advances a simulation by one tick.
type Stepper interface {
	Simulate()
}

// RateStepper is a Stepper that owns its tick rate, such as *Tuning. A
// Scheduler driving one follows its rate.
type RateStepper interface {
	Stepper
	Rate() float64
	SetRate(hz float64)
}

// Scheduler calls Simulate on a Stepper at a fixed rate from one goroutine.
// Rate changes take effect at the next tick boundary.
type Scheduler struct {
	stepper Stepper

	mu      sync.Mutex
	rate    float64
	running bool
	rateCh  chan float64
	stopCh  chan struct{}
	done    chan struct{}

	ticks atomic.Uint64
}

// NewScheduler creates a stopped scheduler for s at rateHz (clamped to
// [MinRate, MaxRate]). For a RateStepper, rateHz <= 0 keeps the stepper's
// own rate; any other value is written to it.
func NewScheduler(s Stepper, rateHz float64) *Scheduler {
	if rs, ok := s.(RateStepper); ok {
		if rateHz <= 0 {
			rateHz = rs.Rate()
		} else {
			rs.SetRate(rateHz)
		}
	}
	return &Scheduler{
		stepper: s,
		rate:    clampRate(rateHz),
	}
}

func period(rateHz float64) time.Duration {
	return time.Duration(float64(time.Second) / rateHz)
}

// Start launches the tick loop. It stops when ctx is done or Stop is called.
// Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.rateCh = make(chan float64, 1)
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(ctx, s.rate, s.rateCh, s.stopCh, s.done)
}

func (s *Scheduler) loop(ctx context.Context, rate float64, rateCh <-chan float64, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(period(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped(stopCh)
			return
		case <-stopCh:
			return
		case r := <-rateCh:
			rate = r
			ticker.Reset(period(r))
		case <-ticker.C:
			s.stepper.Simulate()
			s.ticks.Add(1)
			if rs, ok := s.stepper.(RateStepper); ok {
				if r := clampRate(rs.Rate()); r != rate {
					rate = r
					ticker.Reset(period(r))
					s.mu.Lock()
					s.rate = r
					s.mu.Unlock()
				}
			}
		}
	}
}

func (s *Scheduler) markStopped(stopCh <-chan struct{}) {
	s.mu.Lock()
	if s.stopCh == stopCh {
		s.running = false
	}
	s.mu.Unlock()
}

// Stop halts the loop and waits for an in-flight tick to finish. Stop is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		done := s.done
		s.mu.Unlock()
		if done != nil {
			<-done
		}
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()
	<-done
}

// SetRate changes the tick rate, clamped to [MinRate, MaxRate]. A
// RateStepper is updated too.
func (s *Scheduler) SetRate(hz float64) {
	hz = clampRate(hz)
	if rs, ok := s.stepper.(RateStepper); ok {
		rs.SetRate(hz)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rate = hz
	if !s.running {
		return
	}
	// Keep only the newest pending rate.
	select {
	case <-s.rateCh:
	default:
	}
	s.rateCh <- hz
}

// Rate returns the configured tick rate in Hz.
func (s *Scheduler) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks counts the Simulate calls made so far.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}
