package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/cwbudde/algo-fft"
)

// Peak is a spectral maximum with interpolated frequency.
type Peak struct {
	FrequencyHz float64 `json:"frequency_hz"`
	MagnitudeDB float64 `json:"magnitude_db"`
}

// Peaks returns up to maxPeaks spectral peaks of samples in ascending
// frequency. The spectrum is averaged over Hann-windowed frames with 50%
// overlap; peaks more than floorDB below the strongest are ignored.
func Peaks(samples []float64, sampleRate int, fftSize int, maxPeaks int) ([]Peak, error) {
	const floorDB = 40.0
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if fftSize < 64 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("fft size %d must be a power of two >= 64", fftSize)
	}
	if len(samples) < fftSize {
		return nil, fmt.Errorf("need at least %d samples, got %d", fftSize, len(samples))
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}

	hann, err := window.Hann(fftSize)
	if err != nil {
		return nil, fmt.Errorf("hann window: %w", err)
	}
	nBins := fftSize/2 + 1
	spec := make([]complex128, nBins)
	buf := make([]float64, fftSize)
	avg := make([]float64, nBins)
	frames := 0
	for pos := 0; pos+fftSize <= len(samples); pos += fftSize / 2 {
		copy(buf, samples[pos:pos+fftSize])
		if err := window.ApplyCoefficientsInPlace(buf, hann); err != nil {
			return nil, err
		}
		plan.Forward(spec, buf)
		for k := 0; k < nBins; k++ {
			avg[k] += cmplx.Abs(spec[k])
		}
		frames++
	}

	db := make([]float64, nBins)
	maxDB := math.Inf(-1)
	for k := range avg {
		db[k] = 20 * math.Log10(avg[k]/float64(frames)+1e-12)
		if k > 0 && db[k] > maxDB {
			maxDB = db[k]
		}
	}

	binHz := float64(sampleRate) / float64(fftSize)
	var peaks []Peak
	for k := 1; k < nBins-1; k++ {
		if db[k] < maxDB-floorDB || db[k] <= db[k-1] || db[k] < db[k+1] {
			continue
		}
		offset, mag := parabolicPeak(db[k-1], db[k], db[k+1])
		peaks = append(peaks, Peak{FrequencyHz: (float64(k) + offset) * binHz, MagnitudeDB: mag})
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].MagnitudeDB > peaks[j].MagnitudeDB })
	if maxPeaks > 0 && len(peaks) > maxPeaks {
		peaks = peaks[:maxPeaks]
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].FrequencyHz < peaks[j].FrequencyHz })
	return peaks, nil
}

// parabolicPeak fits a parabola through three log-magnitude bins and
// returns the vertex offset in bins and its height.
func parabolicPeak(left, center, right float64) (float64, float64) {
	den := left - 2*center + right
	if den == 0 {
		return 0, center
	}
	p := 0.5 * (left - right) / den
	return p, center - 0.25*(left-right)*p
}

// CentsFromET returns the nearest MIDI note to freq and the deviation from
// its equal-tempered pitch in cents.
func CentsFromET(freq float64, a4Hz float64) (int, float64) {
	if freq <= 0 || a4Hz <= 0 {
		return 0, 0
	}
	midi := 69 + 12*math.Log2(freq/a4Hz)
	note := int(math.Round(midi))
	return note, (midi - float64(note)) * 100
}
