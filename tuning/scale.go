package tuning

import (
	"fmt"
	"math"
	"strings"
)

// Scale identifies a 12-tone tuning table.
type Scale int

const (
	EqualTemperament Scale = iota
	JustIntonation
	Partial
	Pythagorean
	QuarterCommaMeantone
	WerckmeisterIII
	KirnbergerIII
	Young
	Custom
)

var scaleNames = [...]string{
	EqualTemperament:     "et",
	JustIntonation:       "just",
	Partial:              "partial",
	Pythagorean:          "pythagorean",
	QuarterCommaMeantone: "meantone",
	WerckmeisterIII:      "werckmeister3",
	KirnbergerIII:        "kirnberger3",
	Young:                "young",
	Custom:               "custom",
}

// Ratio-defined scales, indexed by semitone above the fundamental.
var (
	justRatios = [12][2]int{
		{1, 1}, {16, 15}, {9, 8}, {6, 5}, {5, 4}, {4, 3},
		{45, 32}, {3, 2}, {8, 5}, {5, 3}, {9, 5}, {15, 8},
	}
	partialRatios = [12][2]int{
		{1, 1}, {17, 16}, {9, 8}, {19, 16}, {5, 4}, {21, 16},
		{11, 8}, {3, 2}, {13, 8}, {27, 16}, {7, 4}, {15, 8},
	}
	pythagoreanRatios = [12][2]int{
		{1, 1}, {256, 243}, {9, 8}, {32, 27}, {81, 64}, {4, 3},
		{729, 512}, {3, 2}, {128, 81}, {27, 16}, {16, 9}, {243, 128},
	}
)

// Cent-defined well temperaments.
var (
	meantoneCents = [12]float64{
		0, 76.049, 193.157, 310.265, 386.314, 503.422,
		579.471, 696.578, 772.627, 889.735, 1006.843, 1082.892,
	}
	werckmeisterCents = [12]float64{
		0, 90.225, 192.180, 294.135, 390.225, 498.045,
		588.270, 696.090, 792.180, 888.270, 996.090, 1092.180,
	}
	kirnbergerCents = [12]float64{
		0, 90.225, 193.157, 294.135, 386.314, 498.045,
		590.224, 696.578, 792.180, 889.735, 996.090, 1088.269,
	}
	youngCents = [12]float64{
		0, 90.225, 196.090, 294.135, 392.180, 498.045,
		588.270, 698.045, 792.180, 894.135, 996.090, 1090.225,
	}
)

// Scales lists every selectable scale in declaration order.
func Scales() []Scale {
	out := make([]Scale, 0, len(scaleNames))
	for s := range scaleNames {
		out = append(out, Scale(s))
	}
	return out
}

func (s Scale) String() string {
	if s < 0 || int(s) >= len(scaleNames) {
		return fmt.Sprintf("scale(%d)", int(s))
	}
	return scaleNames[s]
}

// ParseScale resolves a scale name as produced by Scale.String.
func ParseScale(name string) (Scale, error) {
	v := strings.ToLower(strings.TrimSpace(name))
	for s, n := range scaleNames {
		if n == v {
			return Scale(s), nil
		}
	}
	return 0, fmt.Errorf("unknown scale %q (valid: %s)", name, strings.Join(scaleNames[:], ", "))
}

// Offsets returns the per-pitch-class deviation from equal temperament in
// fractions of a semitone, relative to the scale's own fundamental.
// Custom yields zeros; callers supply their own table for it.
func Offsets(s Scale) [12]float64 {
	switch s {
	case JustIntonation:
		return ratioOffsets(justRatios)
	case Partial:
		return ratioOffsets(partialRatios)
	case Pythagorean:
		return ratioOffsets(pythagoreanRatios)
	case QuarterCommaMeantone:
		return centOffsets(meantoneCents)
	case WerckmeisterIII:
		return centOffsets(werckmeisterCents)
	case KirnbergerIII:
		return centOffsets(kirnbergerCents)
	case Young:
		return centOffsets(youngCents)
	default:
		return [12]float64{}
	}
}

func ratioOffsets(ratios [12][2]int) [12]float64 {
	var out [12]float64
	for i, r := range ratios {
		out[i] = RatioToCents(float64(r[0])/float64(r[1]))/100.0 - float64(i)
	}
	return out
}

func centOffsets(cents [12]float64) [12]float64 {
	var out [12]float64
	for i, c := range cents {
		out[i] = c/100.0 - float64(i)
	}
	return out
}

// RatioToCents converts a frequency ratio to cents.
func RatioToCents(ratio float64) float64 {
	if ratio <= 0 {
		return 0
	}
	return 1200.0 * math.Log2(ratio)
}

// CentsToRatio converts cents to a frequency ratio.
func CentsToRatio(cents float64) float64 {
	return math.Exp2(cents / 1200.0)
}
