package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-springtune/spring"
	"github.com/cwbudde/algo-springtune/tuning"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadJSONAppliesGlobalAndIntervals(t *testing.T) {
	path := writePreset(t, `{
  "rate": 200,
  "drag": 0.3,
  "interval_scale": "pythagorean",
  "tether_scale": "werckmeister3",
  "interval_fundamental": "auto",
  "tether_fundamental": "Eb",
  "tether_weight": 0.4,
  "fundamental_sets_tether": true,
  "intervals": {
    "4": {"weight": 0.9, "use_fundamental": true},
    "7": {"weight": 0.2}
  }
}`)

	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.Rate != 200 || p.Drag != 0.3 || p.TetherWeight != 0.4 {
		t.Fatalf("global fields mismatch: %+v", p)
	}
	if p.IntervalScale != tuning.Pythagorean || p.TetherScale != tuning.WerckmeisterIII {
		t.Fatalf("scales mismatch: %v %v", p.IntervalScale, p.TetherScale)
	}
	if p.IntervalFundamental != spring.Automatic || p.TetherFundamental != 3 {
		t.Fatalf("fundamentals mismatch: %v %v", p.IntervalFundamental, p.TetherFundamental)
	}
	if !p.FundamentalSetsTether {
		t.Fatalf("fundamental_sets_tether not applied")
	}
	if p.IntervalWeights[4] != 0.9 || !p.UseFundamental[4] || p.IntervalWeights[7] != 0.2 || p.UseFundamental[7] {
		t.Fatalf("interval overrides mismatch: %v %v", p.IntervalWeights, p.UseFundamental)
	}
	if p.IntervalWeights[3] != spring.NewDefaultParams().IntervalWeights[3] {
		t.Fatalf("untouched interval changed: %f", p.IntervalWeights[3])
	}
}

func TestLoadJSONRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"interval key":   `{"intervals": {"0": {"weight": 0.5}}}`,
		"interval name":  `{"intervals": {"x": {"weight": 0.5}}}`,
		"weight range":   `{"intervals": {"4": {"weight": 1.5}}}`,
		"rate range":     `{"rate": 1000}`,
		"drag range":     `{"drag": -0.1}`,
		"scale":          `{"interval_scale": "bogus"}`,
		"fundamental":    `{"interval_fundamental": "loudest"}`,
		"tether pc":      `{"tether_fundamental": "H"}`,
		"custom entries": `{"custom_tuning": [0, 0.1]}`,
		"syntax":         `{"rate": }`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadJSON(writePreset(t, content)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	p := spring.NewDefaultParams()
	p.Rate = 60
	p.Drag = 0.42
	p.IntervalScale = tuning.Custom
	p.IntervalFundamental = spring.Fixed(7)
	p.CustomTuning[4] = -0.14
	p.IntervalWeights[5] = 0.77
	p.UseFundamental[9] = true

	path := filepath.Join(t.TempDir(), "out", "preset.json")
	if err := SaveJSON(path, p); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if *got != *p {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, p)
	}
}
