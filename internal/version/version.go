// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP service with snapshot cache, phases endpoint, Prometheus metrics
// 0.2.0 - JPL Horizons vector tables as an alternative ephemeris source
// 0.1.0 - Initial release: Meeus ephemeris, rise/set, lunar phase, TUI dashboard, headless modes
