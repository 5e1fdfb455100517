package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-springtune/spring"
	"github.com/cwbudde/algo-springtune/tuning"
)

// File is the JSON schema for spring tuning presets.
type File struct {
	Rate                  *float64                   `json:"rate"`
	Drag                  *float64                   `json:"drag"`
	IntervalStiffness     *float64                   `json:"interval_stiffness"`
	TetherStiffness       *float64                   `json:"tether_stiffness"`
	IntervalScale         string                     `json:"interval_scale"`
	TetherScale           string                     `json:"tether_scale"`
	IntervalFundamental   string                     `json:"interval_fundamental"`
	TetherFundamental     string                     `json:"tether_fundamental"`
	TetherWeight          *float64                   `json:"tether_weight"`
	TetherWeightSecondary *float64                   `json:"tether_weight_secondary"`
	FundamentalSetsTether *bool                      `json:"fundamental_sets_tether"`
	CustomTuning          []float64                  `json:"custom_tuning"`
	Intervals             map[string]IntervalSetting `json:"intervals"`
}

// IntervalSetting is a partial per-interval-class override (keys "1".."12").
type IntervalSetting struct {
	Weight         *float64 `json:"weight"`
	UseFundamental *bool    `json:"use_fundamental"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*spring.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := spring.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func checkUnit(name string, v *float64) error {
	if v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("%s must be in [0,1]", name)
	}
	return nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *spring.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.Rate != nil {
		if *f.Rate < spring.MinRate || *f.Rate > spring.MaxRate {
			return fmt.Errorf("rate must be in [%g,%g] Hz", spring.MinRate, spring.MaxRate)
		}
		dst.Rate = *f.Rate
	}
	units := []struct {
		name string
		src  *float64
		dst  *float64
	}{
		{"drag", f.Drag, &dst.Drag},
		{"interval_stiffness", f.IntervalStiffness, &dst.IntervalStiffness},
		{"tether_stiffness", f.TetherStiffness, &dst.TetherStiffness},
		{"tether_weight", f.TetherWeight, &dst.TetherWeight},
		{"tether_weight_secondary", f.TetherWeightSecondary, &dst.TetherWeightSecondary},
	}
	for _, u := range units {
		if err := checkUnit(u.name, u.src); err != nil {
			return err
		}
		if u.src != nil {
			*u.dst = *u.src
		}
	}

	if s := strings.TrimSpace(f.IntervalScale); s != "" {
		scale, err := tuning.ParseScale(s)
		if err != nil {
			return fmt.Errorf("interval_scale: %w", err)
		}
		dst.IntervalScale = scale
	}
	if s := strings.TrimSpace(f.TetherScale); s != "" {
		scale, err := tuning.ParseScale(s)
		if err != nil {
			return fmt.Errorf("tether_scale: %w", err)
		}
		dst.TetherScale = scale
	}
	if s := strings.TrimSpace(f.IntervalFundamental); s != "" {
		mode, err := spring.ParseFundamentalMode(s)
		if err != nil {
			return fmt.Errorf("interval_fundamental: %w", err)
		}
		dst.IntervalFundamental = mode
	}
	if s := strings.TrimSpace(f.TetherFundamental); s != "" {
		pc, err := tuning.ParsePitchClass(s)
		if err != nil {
			return fmt.Errorf("tether_fundamental: %w", err)
		}
		dst.TetherFundamental = pc
	}
	if f.FundamentalSetsTether != nil {
		dst.FundamentalSetsTether = *f.FundamentalSetsTether
	}
	if f.CustomTuning != nil {
		if len(f.CustomTuning) != 12 {
			return fmt.Errorf("custom_tuning must have 12 entries, got %d", len(f.CustomTuning))
		}
		copy(dst.CustomTuning[:], f.CustomTuning)
	}

	if len(f.Intervals) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f.Intervals))
	for k := range f.Intervals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ic, err := strconv.Atoi(k)
		if err != nil || ic < 1 || ic >= spring.NumIntervals {
			return fmt.Errorf("invalid intervals key %q (expected 1..12)", k)
		}
		override := f.Intervals[k]
		if override.Weight != nil {
			if err := checkUnit(fmt.Sprintf("intervals[%d].weight", ic), override.Weight); err != nil {
				return err
			}
			dst.IntervalWeights[ic] = *override.Weight
		}
		if override.UseFundamental != nil {
			dst.UseFundamental[ic] = *override.UseFundamental
		}
	}
	return nil
}

// FromParams builds a complete preset file describing p.
func FromParams(p *spring.Params) *File {
	f := &File{
		Rate:                  ptr(p.Rate),
		Drag:                  ptr(p.Drag),
		IntervalStiffness:     ptr(p.IntervalStiffness),
		TetherStiffness:       ptr(p.TetherStiffness),
		IntervalScale:         p.IntervalScale.String(),
		TetherScale:           p.TetherScale.String(),
		IntervalFundamental:   p.IntervalFundamental.String(),
		TetherFundamental:     p.TetherFundamental.String(),
		TetherWeight:          ptr(p.TetherWeight),
		TetherWeightSecondary: ptr(p.TetherWeightSecondary),
		FundamentalSetsTether: ptr(p.FundamentalSetsTether),
		Intervals:             make(map[string]IntervalSetting, spring.NumIntervals-1),
	}
	if p.IntervalScale == tuning.Custom || p.TetherScale == tuning.Custom {
		f.CustomTuning = append([]float64(nil), p.CustomTuning[:]...)
	}
	for k := 1; k < spring.NumIntervals; k++ {
		f.Intervals[strconv.Itoa(k)] = IntervalSetting{
			Weight:         ptr(p.IntervalWeights[k]),
			UseFundamental: ptr(p.UseFundamental[k]),
		}
	}
	return f
}

// SaveJSON writes p as an indented preset file.
func SaveJSON(path string, p *spring.Params) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(FromParams(p), "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

func ptr[T any](v T) *T {
	return &v
}
