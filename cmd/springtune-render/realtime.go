package main

import (
	"context"
	"io"
	"time"

	"github.com/cwbudde/algo-springtune/internal/fitcommon"
	"github.com/cwbudde/algo-springtune/spring"
)

// realtimePoll is how often note events are checked against the wall clock.
const realtimePoll = 5 * time.Millisecond

// runRealtime lets a Scheduler tick t at its own rate while events are
// played against the wall clock. It returns the number of ticks run once
// duration has passed or ctx is done.
func runRealtime(ctx context.Context, t *spring.Tuning, events []fitcommon.NoteEvent, duration, traceEvery time.Duration, trace io.Writer) uint64 {
	sched := spring.NewScheduler(t, 0)
	sched.Start(ctx)

	poll := time.NewTicker(realtimePoll)
	defer poll.Stop()

	seq := newSequencer(events)
	begin := time.Now()
	var nextTrace time.Duration
loop:
	for {
		elapsed := time.Since(begin)
		seq.advance(elapsed.Seconds(), t.AddNote, t.RemoveNote)
		if traceEvery > 0 && elapsed >= nextTrace {
			printTrace(trace, t, elapsed.Seconds())
			for nextTrace <= elapsed {
				nextTrace += traceEvery
			}
		}
		if elapsed >= duration {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case <-poll.C:
		}
	}
	sched.Stop()
	return sched.Ticks()
}
