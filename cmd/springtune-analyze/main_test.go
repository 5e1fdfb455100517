package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/algo-springtune/analysis"
)

func TestPrintPeaksReportsCentsAndIntervals(t *testing.T) {
	peaks := []analysis.Peak{
		{FrequencyHz: 261.6256, MagnitudeDB: -10},
		{FrequencyHz: 261.6256 * 5 / 4, MagnitudeDB: -11},
	}
	var buf bytes.Buffer
	printPeaks(&buf, peaks, 440)
	out := buf.String()
	for _, want := range []string{"C4", "E4", "-13.69", "interval C4-E4: 386.31 cents"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintPeaksEmpty(t *testing.T) {
	var buf bytes.Buffer
	printPeaks(&buf, nil, 440)
	if strings.TrimSpace(buf.String()) != "no peaks found" {
		t.Fatalf("got %q", buf.String())
	}
}
