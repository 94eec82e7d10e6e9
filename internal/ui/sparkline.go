package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SparklineWidth is the fixed width of the altitude sparklines.
const SparklineWidth = 48

// sparklineBlocks are the Unicode block characters for sparkline (0 = lowest, 7 = highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Altitude gradient stops: horizon (dark blue), mid sky (blue), zenith (pale gold).
var (
	altColorLow  = [3]uint8{0x1b, 0x2b, 0x4b}
	altColorMid  = [3]uint8{0x34, 0x78, 0xc0}
	altColorHigh = [3]uint8{0xf2, 0xd9, 0x8d}
)

// belowHorizonColor is used for cells where the body is down.
const belowHorizonColor = "238"

// renderAltitudeSparkline renders altitudes in degrees as a sparkline.
// Block height spans -90°..90°; only cells above the horizon are colored.
func renderAltitudeSparkline(alts []float64, width int) string {
	samples := resample(alts, width)
	if len(samples) == 0 {
		return labelStyle.Render("no altitude data")
	}

	var sb strings.Builder
	for _, alt := range samples {
		if alt < -90 {
			alt = -90
		}
		if alt > 90 {
			alt = 90
		}

		block := sparklineBlocks[blockIndex((alt+90)/180)]

		var color lipgloss.Color
		if alt < 0 {
			color = lipgloss.Color(belowHorizonColor)
		} else {
			r, g, b := interpolateAltColor(alt / 90)
			color = lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(color).Render(string(block)))
	}

	return sb.String()
}

// renderFractionSparkline renders values in [0, 1] with one cell each.
func renderFractionSparkline(vals []float64) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E1C5"))
	var sb strings.Builder
	for _, v := range vals {
		sb.WriteRune(sparklineBlocks[blockIndex(v)])
	}
	return style.Render(sb.String())
}

func blockIndex(t float64) int {
	idx := int(t * 7.0)
	if idx > 7 {
		idx = 7
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// interpolateAltColor returns RGB color for altitude fraction t in [0, 1].
func interpolateAltColor(t float64) (uint8, uint8, uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	from, to, s := altColorLow, altColorMid, t*2
	if t >= 0.5 {
		from, to, s = altColorMid, altColorHigh, (t-0.5)*2
	}

	mix := func(i int) uint8 {
		return uint8(float64(from[i])*(1-s) + float64(to[i])*s)
	}
	return mix(0), mix(1), mix(2)
}

// resample averages samples into a fixed number of buckets. With fewer
// samples than buckets, samples repeat to fill the width.
func resample(samples []float64, width int) []float64 {
	if len(samples) == 0 || width <= 0 {
		return nil
	}

	result := make([]float64, width)
	samplesPerBucket := float64(len(samples)) / float64(width)

	for i := 0; i < width; i++ {
		startIdx := int(float64(i) * samplesPerBucket)
		endIdx := int(float64(i+1) * samplesPerBucket)
		if endIdx > len(samples) {
			endIdx = len(samples)
		}
		if startIdx >= len(samples) {
			startIdx = len(samples) - 1
		}
		if startIdx >= endIdx {
			endIdx = min(startIdx+1, len(samples))
		}

		sum := 0.0
		count := 0
		for j := startIdx; j < endIdx; j++ {
			sum += samples[j]
			count++
		}
		if count > 0 {
			result[i] = sum / float64(count)
		} else {
			result[i] = samples[startIdx]
		}
	}

	return result
}
