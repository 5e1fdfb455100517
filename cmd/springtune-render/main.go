package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/cwbudde/algo-springtune/analysis"
	"github.com/cwbudde/algo-springtune/internal/fitcommon"
	"github.com/cwbudde/algo-springtune/preset"
	"github.com/cwbudde/algo-springtune/render"
	"github.com/cwbudde/algo-springtune/spring"
	"github.com/cwbudde/algo-springtune/tuning"
)

const blockSize = 128

func main() {
	presetPath := flag.String("preset", "", "Preset JSON file path (default: built-in defaults)")
	notes := flag.String("notes", "C4,E4,G4", "Comma-separated notes, each optionally timed as note@start or note@start:end seconds")
	duration := flag.Float64("duration", 3.0, "Duration in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	a4 := flag.Float64("a4", 440.0, "Reference pitch of A4 in Hz")
	intervalScale := flag.String("interval-scale", "", "Override interval scale: "+scaleNames())
	tetherScale := flag.String("tether-scale", "", "Override tether scale: "+scaleNames())
	fundamental := flag.String("fundamental", "", "Override interval fundamental: pitch class, lowest, highest, last or auto")
	output := flag.String("output", "output.wav", "Output WAV file path")
	traceEvery := flag.Float64("trace-every", 0.5, "Print note deviations every N seconds (0 disables)")
	dump := flag.Bool("dump", false, "Print the spring graph at the end of the render")
	verify := flag.Bool("verify", false, "Measure the rendered pitches of notes held at the end")
	realtime := flag.Bool("realtime", false, "Run the engine on the wall clock with a Scheduler and print traces instead of writing audio")
	flag.Parse()

	params := spring.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset %q: %v", *presetPath, err)
		}
		params = p
	}
	if err := applyOverrides(params, *intervalScale, *tetherScale, *fundamental); err != nil {
		die("%v", err)
	}

	events, err := fitcommon.ParseNoteEvents(*notes)
	if err != nil {
		die("invalid -notes: %v", err)
	}

	if *realtime {
		if *verify {
			die("-verify needs rendered audio and cannot be combined with -realtime")
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		t := spring.NewTuning(params)
		fmt.Printf("Running %d notes for %.2f seconds at %.0f Hz (interval %s over tether %s, fundamental %s)...\n",
			len(events), *duration, t.Rate(), params.IntervalScale, params.TetherScale, params.IntervalFundamental)
		ticks := runRealtime(ctx, t, events, seconds(*duration), seconds(*traceEvery), os.Stdout)
		fmt.Printf("Done (%d ticks)\n", ticks)
		if *dump {
			t.Print(os.Stdout)
		}
		return
	}

	totalFrames := int(float64(*sampleRate) * (*duration))
	if totalFrames < blockSize {
		totalFrames = blockSize
	}

	fmt.Printf("Rendering %d notes for %.2f seconds at %d Hz (interval %s over tether %s, fundamental %s)...\n",
		len(events), float64(totalFrames)/float64(*sampleRate), *sampleRate,
		params.IntervalScale, params.TetherScale, params.IntervalFundamental)

	t := spring.NewTuning(params)
	r := render.NewRenderer(*sampleRate, *a4, t)
	traceFrames := int(float64(*sampleRate) * (*traceEvery))
	samples := renderSequence(r, events, totalFrames, *sampleRate, traceFrames, os.Stdout)

	if err := fitcommon.WriteStereoWAV(*output, samples, *sampleRate); err != nil {
		die("failed to write %s: %v", *output, err)
	}
	fmt.Printf("Successfully wrote %s (%d frames, %d ticks, rms %.4f)\n", *output, totalFrames, r.Ticks(), fitcommon.StereoRMS(samples))

	if *dump {
		t.Print(os.Stdout)
	}
	if *verify {
		if err := verifyPitches(os.Stdout, t, samples, *sampleRate, *a4); err != nil {
			die("verify failed: %v", err)
		}
	}
}

func scaleNames() string {
	var names []string
	for _, s := range tuning.Scales() {
		names = append(names, s.String())
	}
	return strings.Join(names, "|")
}

func applyOverrides(p *spring.Params, intervalScale, tetherScale, fundamental string) error {
	if intervalScale != "" {
		s, err := tuning.ParseScale(intervalScale)
		if err != nil {
			return fmt.Errorf("invalid -interval-scale: %w", err)
		}
		p.IntervalScale = s
	}
	if tetherScale != "" {
		s, err := tuning.ParseScale(tetherScale)
		if err != nil {
			return fmt.Errorf("invalid -tether-scale: %w", err)
		}
		p.TetherScale = s
	}
	if fundamental != "" {
		m, err := spring.ParseFundamentalMode(fundamental)
		if err != nil {
			return fmt.Errorf("invalid -fundamental: %w", err)
		}
		p.IntervalFundamental = m
	}
	return nil
}

// renderSequence plays events through r block by block. Note boundaries are
// quantised to blockSize frames.
func renderSequence(r *render.Renderer, events []fitcommon.NoteEvent, totalFrames int, sampleRate int, traceFrames int, trace io.Writer) []float32 {
	samples := make([]float32, 0, totalFrames*2)
	seq := newSequencer(events)
	nextTrace := 0

	for framesRendered := 0; framesRendered < totalFrames; {
		now := float64(framesRendered) / float64(sampleRate)
		seq.advance(now, r.NoteOn, r.NoteOff)

		if traceFrames > 0 && framesRendered >= nextTrace {
			printTrace(trace, r.Tuning(), now)
			nextTrace += traceFrames
		}

		n := fitcommon.MinInt(blockSize, totalFrames-framesRendered)
		samples = append(samples, r.Process(n)...)
		framesRendered += n
	}
	return samples
}

// sequencer fires each event's note on and note off once, in event order.
type sequencer struct {
	events  []fitcommon.NoteEvent
	started []bool
	stopped []bool
}

func newSequencer(events []fitcommon.NoteEvent) *sequencer {
	return &sequencer{
		events:  events,
		started: make([]bool, len(events)),
		stopped: make([]bool, len(events)),
	}
}

// advance fires everything due at now seconds.
func (s *sequencer) advance(now float64, noteOn, noteOff func(note int)) {
	for i, ev := range s.events {
		if !s.started[i] && now >= ev.Start {
			noteOn(ev.Note)
			s.started[i] = true
		}
		if s.started[i] && !s.stopped[i] && ev.End >= 0 && now >= ev.End {
			noteOff(ev.Note)
			s.stopped[i] = true
		}
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func printTrace(w io.Writer, t *spring.Tuning, now float64) {
	active := t.ActiveNotes()
	if len(active) == 0 {
		fmt.Fprintf(w, "t=%6.3fs  (silent)\n", now)
		return
	}
	var b strings.Builder
	for _, n := range active {
		fmt.Fprintf(&b, " %s%+.2f", tuning.NoteName(n), t.Deviation(n))
	}
	fmt.Fprintf(w, "t=%6.3fs  fundamental=%s%s\n", now, t.Fundamental(), b.String())
}

// verifyPitches analyses the final second of the render and compares the
// detected peaks with the engine's positions.
func verifyPitches(w io.Writer, t *spring.Tuning, samples []float32, sampleRate int, a4 float64) error {
	active := t.ActiveNotes()
	if len(active) == 0 {
		return fmt.Errorf("no notes held at the end of the render")
	}
	mono := fitcommon.DownmixStereo(samples)
	if len(mono) > sampleRate {
		mono = mono[len(mono)-sampleRate:]
	}
	fftSize := 16384
	for fftSize > len(mono) && fftSize > 1024 {
		fftSize /= 2
	}
	peaks, err := analysis.Peaks(mono, sampleRate, fftSize, len(active))
	if err != nil {
		return err
	}

	var worst float64
	for _, n := range active {
		want := t.Frequency(n, a4)
		best := -1
		for i, p := range peaks {
			if best < 0 || math.Abs(p.FrequencyHz-want) < math.Abs(peaks[best].FrequencyHz-want) {
				best = i
			}
		}
		if best < 0 {
			fmt.Fprintf(w, "%-4s engine %+7.2f cents  no peak found\n", tuning.NoteName(n), t.Deviation(n))
			continue
		}
		got := peaks[best].FrequencyHz
		errCents := 1200 * math.Log2(got/want)
		worst = math.Max(worst, math.Abs(errCents))
		_, dev := analysis.CentsFromET(got, a4)
		fmt.Fprintf(w, "%-4s engine %+7.2f cents  measured %+7.2f cents (%.3f Hz)\n", tuning.NoteName(n), t.Deviation(n), dev, got)
	}
	fmt.Fprintf(w, "Worst render error %.2f cents\n", worst)
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
