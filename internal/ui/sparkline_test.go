package ui

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
)

func TestResample(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		width   int
		want    []float64
	}{
		{"empty", nil, 4, nil},
		{"zero width", []float64{1, 2}, 0, nil},
		{"identity", []float64{1, 2, 3}, 3, []float64{1, 2, 3}},
		{"average pairs", []float64{0, 10, 20, 30}, 2, []float64{5, 25}},
		{"stretch", []float64{4, 8}, 4, []float64{4, 4, 8, 8}},
		{"stretch uneven", []float64{1, 2, 3}, 5, []float64{1, 1, 2, 2, 3}},
		{"single sample", []float64{7}, 3, []float64{7, 7, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resample(tt.samples, tt.width)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("resample[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBlockIndex(t *testing.T) {
	tests := []struct {
		t    float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{0.5, 3},
		{1, 7},
		{2, 7},
	}
	for _, tt := range tests {
		if got := blockIndex(tt.t); got != tt.want {
			t.Errorf("blockIndex(%v) = %d, want %d", tt.t, got, tt.want)
		}
	}
}

func TestInterpolateAltColor(t *testing.T) {
	r, g, b := interpolateAltColor(0)
	if [3]uint8{r, g, b} != altColorLow {
		t.Errorf("t=0 color = %v, want %v", [3]uint8{r, g, b}, altColorLow)
	}
	r, g, b = interpolateAltColor(0.5)
	if [3]uint8{r, g, b} != altColorMid {
		t.Errorf("t=0.5 color = %v, want %v", [3]uint8{r, g, b}, altColorMid)
	}
	r, g, b = interpolateAltColor(1.2)
	if [3]uint8{r, g, b} != altColorHigh {
		t.Errorf("t>1 color = %v, want %v", [3]uint8{r, g, b}, altColorHigh)
	}
}

func TestRenderAltitudeSparkline(t *testing.T) {
	out := ansi.Strip(renderAltitudeSparkline([]float64{-90, 0, 90}, 3))
	if out != "▁▄█" {
		t.Errorf("sparkline = %q, want ▁▄█", out)
	}

	wide := ansi.Strip(renderAltitudeSparkline([]float64{-10, 30, 60, 10}, SparklineWidth))
	if n := utf8.RuneCountInString(wide); n != SparklineWidth {
		t.Errorf("sparkline width = %d, want %d", n, SparklineWidth)
	}

	if got := renderAltitudeSparkline(nil, SparklineWidth); !strings.Contains(got, "no altitude data") {
		t.Errorf("empty sparkline = %q", got)
	}
}

func TestRenderFractionSparkline(t *testing.T) {
	out := ansi.Strip(renderFractionSparkline([]float64{0, 0.5, 1}))
	if out != "▁▄█" {
		t.Errorf("fraction sparkline = %q, want ▁▄█", out)
	}
}
