package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-springtune/preset"
	"github.com/cwbudde/algo-springtune/spring"
)

func main() {
	presetPath := flag.String("preset", "", "Base preset JSON path (default: built-in defaults)")
	outputPreset := flag.String("output-preset", "presets/fitted.json", "Path to write best fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	notes := flag.String("notes", "C4,E4,G4;A3,C4,E4;F3,A3,C4;G3,B3,D4", "Chord progression: chords separated by ';', notes by ','")
	ticks := flag.Int("ticks", 200, "Simulation ticks per chord")
	driftWeight := flag.Float64("drift-weight", 0.25, "Weight of the final mean deviation from equal temperament")
	groups := flag.String("groups", "dynamics,weights", "Knob groups: dynamics,weights,intervals")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 50, "Print progress every N evaluations")
	workers := flag.Int("workers", 0, "Parallel optimization workers (0 = GOMAXPROCS)")
	checkpoint := flag.Bool("checkpoint", true, "Rewrite the preset and report on every improvement")
	resume := flag.Bool("resume", false, "Resume from previous best_knobs report when available")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *maxEvals < 1 {
		die("evals must be >= 1")
	}
	if *ticks < 1 {
		die("ticks must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if *workers < 0 {
		die("workers must be >= 0")
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	variant := strings.ToLower(*mayflyVariant)
	if _, err := newMayflyConfig(variant, *mayflyPop, 1, 1); err != nil {
		die("invalid mayfly variant: %v", err)
	}

	baseParams := spring.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		baseParams = p
	}
	chords, err := parseChords(*notes)
	if err != nil {
		die("invalid -notes: %v", err)
	}
	knobGroups, err := parseKnobGroups(*groups)
	if err != nil {
		die("invalid -groups: %v", err)
	}

	defs, initCand := initCandidate(baseParams, knobGroups)
	if *resume {
		resumePath := *reportPath
		if resumePath == "" {
			resumePath = *outputPreset + ".report.json"
		}
		if resumed, ok, err := loadCandidateFromReport(resumePath, defs, initCand); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", resumePath, err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", resumePath)
		}
	}

	rep := runReport{
		PresetPath:    *presetPath,
		Chords:        chords,
		TicksPerChord: *ticks,
		DriftWeight:   *driftWeight,
		MayflyVariant: variant,
	}
	cfg := &optimizationConfig{
		baseParams:       baseParams,
		defs:             defs,
		initCandidate:    initCand,
		chords:           chords,
		ticksPerChord:    *ticks,
		driftWeight:      *driftWeight,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		mayflyVariant:    variant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          *workers,
	}
	if *checkpoint {
		cfg.onImprove = func(c candidate, m Metrics, evals int) {
			r := rep
			r.Evaluations = evals
			r.BestMetrics = m
			if err := writeOutputs(*outputPreset, *reportPath, r, applyCandidate(baseParams, defs, c), defs, c); err != nil {
				fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
			}
		}
	}

	res, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	rep.DurationSec = res.elapsed
	rep.Evaluations = res.evals
	rep.StartMetrics = res.start
	rep.BestMetrics = res.bestMetrics
	best := applyCandidate(baseParams, defs, res.best)
	if err := writeOutputs(*outputPreset, *reportPath, rep, best, defs, res.best); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs start=%.4f best=%.4f variant=%s\n", res.evals, res.elapsed, res.start.Score, res.bestMetrics.Score, variant)
	fmt.Printf("Wrote %s\n", *outputPreset)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
