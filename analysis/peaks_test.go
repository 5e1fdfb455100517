package analysis

import (
	"math"
	"testing"
)

func sines(sampleRate int, seconds float64, freqs ...float64) []float64 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float64, n)
	for i := range out {
		tm := float64(i) / float64(sampleRate)
		for _, f := range freqs {
			out[i] += 0.3 * math.Sin(2*math.Pi*f*tm)
		}
	}
	return out
}

func TestPeaksFindsSingleTone(t *testing.T) {
	const sr = 48000
	peaks, err := Peaks(sines(sr, 1.0, 440), sr, 8192, 1)
	if err != nil {
		t.Fatalf("Peaks: %v", err)
	}
	if len(peaks) != 1 {
		t.Fatalf("peaks=%v", peaks)
	}
	if math.Abs(peaks[0].FrequencyHz-440) > 1.0 {
		t.Fatalf("peak at %.3f Hz want 440", peaks[0].FrequencyHz)
	}
}

func TestPeaksResolvesJustThird(t *testing.T) {
	const sr = 48000
	c4 := 261.6256
	e4 := c4 * 5 / 4
	peaks, err := Peaks(sines(sr, 2.0, c4, e4), sr, 16384, 2)
	if err != nil {
		t.Fatalf("Peaks: %v", err)
	}
	if len(peaks) != 2 {
		t.Fatalf("peaks=%v", peaks)
	}
	_, dev := CentsFromET(peaks[1].FrequencyHz, 440)
	if math.Abs(dev-(-13.686)) > 1.0 {
		t.Fatalf("E4 deviation %.3f cents want about -13.7", dev)
	}
}

func TestPeaksRejectsBadInput(t *testing.T) {
	if _, err := Peaks(make([]float64, 100), 48000, 1000, 1); err == nil {
		t.Fatalf("expected error for non power of two")
	}
	if _, err := Peaks(make([]float64, 100), 48000, 1024, 1); err == nil {
		t.Fatalf("expected error for short input")
	}
	if _, err := Peaks(make([]float64, 2048), 0, 1024, 1); err == nil {
		t.Fatalf("expected error for sample rate")
	}
}

func TestCentsFromET(t *testing.T) {
	note, dev := CentsFromET(440, 440)
	if note != 69 || math.Abs(dev) > 1e-9 {
		t.Fatalf("A4 -> %d %f", note, dev)
	}
	note, dev = CentsFromET(440*math.Exp2(10.0/1200), 440)
	if note != 69 || math.Abs(dev-10) > 1e-9 {
		t.Fatalf("A4+10c -> %d %f", note, dev)
	}
	if n, d := CentsFromET(0, 440); n != 0 || d != 0 {
		t.Fatalf("zero freq -> %d %f", n, d)
	}
}
