package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-springtune/analysis"
	"github.com/cwbudde/algo-springtune/internal/fitcommon"
	"github.com/cwbudde/algo-springtune/tuning"
)

func main() {
	input := flag.String("input", "output.wav", "Input WAV path")
	rate := flag.Int("rate", 48000, "Analysis sample rate (input is resampled when it differs)")
	fftSize := flag.Int("fft", 16384, "FFT size (power of two)")
	maxPeaks := flag.Int("peaks", 6, "Maximum number of peaks to report")
	a4 := flag.Float64("a4", 440.0, "Reference pitch of A4 in Hz")
	flag.Parse()

	samples, sr, err := fitcommon.ReadWAVMono(*input)
	if err != nil {
		die("failed to read input: %v", err)
	}
	samples, err = fitcommon.ResampleIfNeeded(samples, sr, *rate)
	if err != nil {
		die("failed to resample input: %v", err)
	}
	fmt.Printf("Analyzing %s (%d Hz -> %d Hz, %.2fs, fft %d)\n", *input, sr, *rate, float64(len(samples))/float64(*rate), *fftSize)

	peaks, err := analysis.Peaks(samples, *rate, *fftSize, *maxPeaks)
	if err != nil {
		die("analysis failed: %v", err)
	}
	printPeaks(os.Stdout, peaks, *a4)
}

func printPeaks(w io.Writer, peaks []analysis.Peak, a4 float64) {
	if len(peaks) == 0 {
		fmt.Fprintln(w, "no peaks found")
		return
	}
	fmt.Fprintf(w, "%-6s %12s %10s %10s\n", "note", "freq_hz", "cents", "level_db")
	for _, p := range peaks {
		note, dev := analysis.CentsFromET(p.FrequencyHz, a4)
		fmt.Fprintf(w, "%-6s %12.3f %+10.2f %10.1f\n", tuning.NoteName(note), p.FrequencyHz, dev, p.MagnitudeDB)
	}
	base := peaks[0].FrequencyHz
	for i := 1; i < len(peaks); i++ {
		fmt.Fprintf(w, "interval %s-%s: %.2f cents\n",
			noteOf(base, a4), noteOf(peaks[i].FrequencyHz, a4), tuning.RatioToCents(peaks[i].FrequencyHz/base))
	}
}

func noteOf(freq, a4 float64) string {
	n, _ := analysis.CentsFromET(freq, a4)
	return tuning.NoteName(n)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
