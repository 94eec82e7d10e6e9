package snapshot

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/lunas/internal/astro"
)

// TimestampLayout is the local timestamp format of snapshot events.
const TimestampLayout = "2006-01-02 15:04"

// FormatLocal renders at in loc, truncated to the minute so an event stays
// on the local date it occurred.
func FormatLocal(at astro.Instant, loc *time.Location) string {
	return at.In(loc).Truncate(time.Minute).Format(TimestampLayout)
}

// ParseLocal parses a timestamp produced by FormatLocal under the same zone.
func ParseLocal(s string, loc *time.Location) (astro.Instant, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, loc)
	if err != nil {
		return astro.Instant{}, fmt.Errorf("parse local timestamp %q: %w", s, err)
	}
	return astro.At(t), nil
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
