package main

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-springtune/internal/fitcommon"
	"github.com/cwbudde/algo-springtune/preset"
	"github.com/cwbudde/algo-springtune/spring"
)

type runReport struct {
	PresetPath    string             `json:"preset_path"`
	OutputPreset  string             `json:"output_preset"`
	Chords        [][]int            `json:"chords"`
	TicksPerChord int                `json:"ticks_per_chord"`
	DriftWeight   float64            `json:"drift_weight"`
	DurationSec   float64            `json:"elapsed_seconds"`
	Evaluations   int                `json:"evaluations"`
	MayflyVariant string             `json:"mayfly_variant"`
	StartMetrics  Metrics            `json:"start_metrics"`
	BestScore     float64            `json:"best_score"`
	BestMetrics   Metrics            `json:"best_metrics"`
	BestKnobs     map[string]float64 `json:"best_knobs"`
}

func writeOutputs(outputPreset string, reportPath string, rep runReport, best *spring.Params, defs []knobDef, c candidate) error {
	if err := preset.SaveJSON(outputPreset, best); err != nil {
		return err
	}
	rep.OutputPreset = outputPreset
	rep.BestScore = rep.BestMetrics.Score
	rep.BestKnobs = make(map[string]float64, len(defs))
	for i, d := range defs {
		rep.BestKnobs[d.Name] = c.Vals[i]
	}
	if reportPath == "" {
		reportPath = outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

// loadCandidateFromReport restores best_knobs from an earlier report. Knobs
// missing from the report keep their fallback values.
func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := cloneCandidate(fallback).Vals
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = fitcommon.Clamp(v, d.Min, d.Max)
			if d.IsInt {
				vals[i] = math.Round(vals[i])
			}
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}
