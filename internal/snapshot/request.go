package snapshot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted in requests.
const DateLayout = "2006-01-02"

// Request identifies one almanac day for one observer.
type Request struct {
	Date        string  // YYYY-MM-DD in the observer's civil calendar; empty means today (UTC)
	LatDeg      float64 // geodetic latitude, north positive
	LonDeg      float64 // longitude, east positive
	OffsetHours float64 // civil offset from UTC, fractional hours allowed
}

// InputError reports a request field that failed validation.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func inputErr(field string, value any, reason string) *InputError {
	return &InputError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}

// OffsetPolicy bounds the accepted UTC offsets.
type OffsetPolicy int

const (
	// OffsetStrict accepts offsets in use by civil time zones, -12h to +14h.
	OffsetStrict OffsetPolicy = iota
	// OffsetLenient accepts any offset within a day of UTC.
	OffsetLenient
)

// String returns the policy name.
func (p OffsetPolicy) String() string {
	switch p {
	case OffsetStrict:
		return "strict"
	case OffsetLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// ParseOffsetPolicy parses a policy name.
func ParseOffsetPolicy(s string) (OffsetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return OffsetStrict, nil
	case "lenient":
		return OffsetLenient, nil
	default:
		return OffsetStrict, fmt.Errorf("unknown offset policy %q", s)
	}
}

// Check validates an offset in hours under the policy.
func (p OffsetPolicy) Check(hours float64) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return inputErr("offset", hours, "must be a finite number of hours")
	}

	lo, hi := -12.0, 14.0
	if p == OffsetLenient {
		lo, hi = -24, 24
	}
	if hours < lo || hours > hi {
		return inputErr("offset", hours, fmt.Sprintf("must be within [%g, %g] hours", lo, hi))
	}
	return nil
}

// ParseNumber parses a numeric request field, reporting failures as
// *InputError.
func ParseNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, inputErr(field, raw, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, inputErr(field, raw, "is not a finite number")
	}
	return v, nil
}

// OffsetZone returns a fixed time zone for an offset in hours.
func OffsetZone(hours float64) *time.Location {
	secs := int(math.Round(hours * 3600))
	sign := '+'
	if secs < 0 {
		sign = '-'
	}
	abs := secs
	if abs < 0 {
		abs = -abs
	}
	name := fmt.Sprintf("UTC%c%02d:%02d", sign, abs/3600, (abs%3600)/60)
	return time.FixedZone(name, secs)
}

// validate checks the observer fields and the offset.
func (r Request) validate(policy OffsetPolicy) error {
	if math.IsNaN(r.LatDeg) || r.LatDeg < -90 || r.LatDeg > 90 {
		return inputErr("lat", r.LatDeg, "must be within [-90, 90] degrees")
	}
	if math.IsNaN(r.LonDeg) || r.LonDeg < -180 || r.LonDeg > 180 {
		return inputErr("lon", r.LonDeg, "must be within [-180, 180] degrees")
	}
	return policy.Check(r.OffsetHours)
}

// parseDate parses a YYYY-MM-DD date as midnight in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, inputErr("date", s, "must be a calendar date in YYYY-MM-DD form")
	}
	return d, nil
}
