package spring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingStepper struct {
	n atomic.Int64
}

func (c *countingStepper) Simulate() { c.n.Add(1) }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestSchedulerTicks(t *testing.T) {
	c := &countingStepper{}
	s := NewScheduler(c, 400)
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return c.n.Load() >= 20 })
	if s.Ticks() == 0 {
		t.Fatalf("tick counter not advanced")
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	c := &countingStepper{}
	s := NewScheduler(c, 200)
	s.Stop()
	s.Start(context.Background())
	waitFor(t, 2*time.Second, func() bool { return c.n.Load() > 0 })
	s.Stop()
	s.Stop()
	if s.Running() {
		t.Fatalf("scheduler still running")
	}
	n := c.n.Load()
	time.Sleep(30 * time.Millisecond)
	if c.n.Load() != n {
		t.Fatalf("ticks after stop: %d -> %d", n, c.n.Load())
	}
}

func TestSchedulerContextCancel(t *testing.T) {
	c := &countingStepper{}
	s := NewScheduler(c, 400)
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	waitFor(t, 2*time.Second, func() bool { return c.n.Load() > 0 })
	cancel()
	waitFor(t, 2*time.Second, func() bool { return !s.Running() })
	s.Stop()
}

func TestSchedulerSetRate(t *testing.T) {
	c := &countingStepper{}
	s := NewScheduler(c, 5)
	if s.Rate() != 5 {
		t.Fatalf("rate=%f", s.Rate())
	}
	s.Start(context.Background())
	defer s.Stop()

	s.SetRate(400)
	s.SetRate(10000)
	if s.Rate() != MaxRate {
		t.Fatalf("rate not clamped: %f", s.Rate())
	}
	// At 5 Hz this would take two seconds.
	waitFor(t, time.Second, func() bool { return c.n.Load() >= 10 })
}

func TestSchedulerDrivesTuning(t *testing.T) {
	tn := NewTuning(justThirdParams())
	tn.AddNote(60)
	tn.AddNote(64)
	s := NewScheduler(tn, 400)
	s.Start(context.Background())
	waitFor(t, 5*time.Second, func() bool { return s.Ticks() >= 100 })
	s.Stop()

	third := tn.Cents(64) - tn.Cents(60)
	if third >= 400 || third < 380 {
		t.Fatalf("third=%f not pulled toward just", third)
	}
}

func TestSchedulerFollowsTuningRate(t *testing.T) {
	p := NewDefaultParams()
	p.Rate = 20
	tn := NewTuning(p)
	tn.AddNote(60)

	s := NewScheduler(tn, 0)
	if s.Rate() != 20 {
		t.Fatalf("rate=%f, want the tuning's 20", s.Rate())
	}
	s.Start(context.Background())
	defer s.Stop()

	next := tn.Params()
	next.Rate = 400
	tn.SetParams(next)

	waitFor(t, 2*time.Second, func() bool { return s.Rate() == 400 })
	n0 := s.Ticks()
	// At 20 Hz this would take two seconds.
	waitFor(t, time.Second, func() bool { return s.Ticks() >= n0+40 })
}

func TestSchedulerSetRateUpdatesTuning(t *testing.T) {
	tn := NewTuning(NewDefaultParams())
	s := NewScheduler(tn, 50)
	if tn.Rate() != 50 {
		t.Fatalf("tuning rate=%f after NewScheduler", tn.Rate())
	}
	s.SetRate(250)
	if tn.Rate() != 250 || s.Rate() != 250 {
		t.Fatalf("tuning=%f scheduler=%f", tn.Rate(), s.Rate())
	}
}
