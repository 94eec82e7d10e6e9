package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WriteJSON writes the snapshot as indented JSON.
func (s *Snapshot) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteJSON writes the report as indented JSON.
func (r *PhaseReport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteSummary writes a plain text table of the snapshot.
func WriteSummary(w io.Writer, s *Snapshot) {
	fmt.Fprintf(w, "Almanac for %s  (%.4f, %.4f)  UTC%+g\n", s.Date, s.Latitude, s.Longitude, s.OffsetHours)
	fmt.Fprintln(w, strings.Repeat("─", 52))

	fmt.Fprintf(w, "%-6s %-18s %-18s\n", "Body", "Rise", "Set")
	fmt.Fprintln(w, strings.Repeat("─", 52))
	fmt.Fprintf(w, "%-6s %-18s %-18s\n", "Sun", orNone(s.Sun.Rise), orNone(s.Sun.Set))
	fmt.Fprintf(w, "%-6s %-18s %-18s\n", "Moon", orNone(s.Moon.Rise), orNone(s.Moon.Set))
	fmt.Fprintln(w, strings.Repeat("─", 52))

	fmt.Fprintf(w, "Phase:         %s (%.2f°)\n", s.Phase, s.PhaseAngle)
	fmt.Fprintf(w, "Illuminated:   %.1f%%\n", s.IlluminatedFraction*100)
	fmt.Fprintf(w, "Moon distance: %s km\n", groupThousands(s.MoonDistanceKm))
	fmt.Fprintf(w, "Sun distance:  %s km\n", groupThousands(s.SunDistanceKm))
}

// WritePhases writes a plain text listing of the report.
func WritePhases(w io.Writer, r *PhaseReport) {
	fmt.Fprintf(w, "Lunar phases from %s (%d days)\n", r.From, r.Days)
	fmt.Fprintln(w, strings.Repeat("─", 36))

	if len(r.Phases) == 0 {
		fmt.Fprintln(w, "No principal phases")
		return
	}
	for _, p := range r.Phases {
		fmt.Fprintf(w, "%-16s %s\n", p.Phase, p.At)
	}
}

func orNone(s *string) string {
	if s == nil {
		return "—"
	}
	return *s
}

// groupThousands formats a distance with comma separators and no decimals.
func groupThousands(km float64) string {
	s := fmt.Sprintf("%.0f", km)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
