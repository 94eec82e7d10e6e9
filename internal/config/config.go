// Package config holds service and CLI settings, built from defaults,
// functional options and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/litescript/lunas/internal/discrete"
	"github.com/litescript/lunas/internal/ephem"
	"github.com/litescript/lunas/internal/logging"
	"github.com/litescript/lunas/internal/snapshot"
)

const (
	// DefaultTableLead is how far before now a Horizons table starts when
	// EPHEMERIS_START is unset.
	DefaultTableLead = 31 * 24 * time.Hour

	// DefaultTableSpan is how far after now a Horizons table ends when
	// EPHEMERIS_END is unset.
	DefaultTableSpan = 400 * 24 * time.Hour
)

type Config struct {
	Environment       string
	LogLevel          zerolog.Level
	HTTPAddr          string
	HTTPTimeout       time.Duration
	ShutdownTimeout   time.Duration
	EphemerisSource   ephem.Mode
	EphemerisStart    time.Time // zero means now - DefaultTableLead
	EphemerisEnd      time.Time // zero means now + DefaultTableSpan
	HorizonsURL       string
	SnapshotCacheSize int
	OffsetPolicy      snapshot.OffsetPolicy
	SearchStep        time.Duration
	SearchEpsilon     time.Duration
}

type Option func(*Config)

// WithEnvironment sets the deployment environment name.
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel sets the log level; unknown names mean info.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		c.LogLevel = logging.ParseLevel(level)
	}
}

// WithHTTPAddr sets the listen address of the HTTP service.
func WithHTTPAddr(addr string) Option {
	return func(c *Config) {
		c.HTTPAddr = addr
	}
}

// WithHTTPTimeout sets the timeout for outbound and handler requests.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// WithEphemerisSource selects the ephemeris provider.
func WithEphemerisSource(m ephem.Mode) Option {
	return func(c *Config) {
		c.EphemerisSource = m
	}
}

// WithEphemerisWindow sets the span a tabulated ephemeris is loaded for.
func WithEphemerisWindow(start, end time.Time) Option {
	return func(c *Config) {
		c.EphemerisStart = start
		c.EphemerisEnd = end
	}
}

// WithHorizonsURL overrides the Horizons API endpoint.
func WithHorizonsURL(u string) Option {
	return func(c *Config) {
		c.HorizonsURL = u
	}
}

// WithSnapshotCacheSize sets the number of cached HTTP snapshots.
func WithSnapshotCacheSize(n int) Option {
	return func(c *Config) {
		c.SnapshotCacheSize = n
	}
}

// WithOffsetPolicy sets the accepted UTC offset range.
func WithOffsetPolicy(p snapshot.OffsetPolicy) Option {
	return func(c *Config) {
		c.OffsetPolicy = p
	}
}

// WithSearch sets the event search step and tolerance.
func WithSearch(step, epsilon time.Duration) Option {
	return func(c *Config) {
		c.SearchStep = step
		c.SearchEpsilon = epsilon
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:       "production",
		LogLevel:          zerolog.InfoLevel,
		HTTPAddr:          ":8080",
		HTTPTimeout:       ephem.RequestTimeout,
		ShutdownTimeout:   10 * time.Second,
		EphemerisSource:   ephem.ModeMeeus,
		HorizonsURL:       ephem.HorizonsAPIURL,
		SnapshotCacheSize: 1024,
		OffsetPolicy:      snapshot.OffsetStrict,
		SearchStep:        discrete.DefaultStep,
		SearchEpsilon:     discrete.DefaultEpsilon,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.SnapshotCacheSize <= 0 {
		return errors.New("SNAPSHOT_CACHE_SIZE must be positive")
	}
	if err := c.SearchOptions().Validate(); err != nil {
		return fmt.Errorf("SEARCH_STEP/SEARCH_EPSILON: %w", err)
	}
	if !c.EphemerisStart.IsZero() && !c.EphemerisEnd.IsZero() && !c.EphemerisEnd.After(c.EphemerisStart) {
		return errors.New("EPHEMERIS_END must be after EPHEMERIS_START")
	}
	return nil
}

// SearchOptions returns the event finder options for this configuration.
func (c *Config) SearchOptions() discrete.Options {
	opts := discrete.DefaultOptions()
	opts.Step = c.SearchStep
	opts.Epsilon = c.SearchEpsilon
	return opts
}

// EphemerisWindow resolves the table load span relative to now.
func (c *Config) EphemerisWindow(now time.Time) (start, end time.Time) {
	start, end = c.EphemerisStart, c.EphemerisEnd
	if start.IsZero() {
		start = now.Add(-DefaultTableLead)
	}
	if end.IsZero() {
		end = now.Add(DefaultTableSpan)
	}
	return start, end
}

// LoadFromEnv loads configuration from environment variables, applying
// defaults where unset.
func LoadFromEnv() (*Config, error) {
	source, err := ephem.ParseMode(os.Getenv("EPHEMERIS_SOURCE"))
	if err != nil {
		return nil, fmt.Errorf("EPHEMERIS_SOURCE: %w", err)
	}
	policy, err := snapshot.ParseOffsetPolicy(os.Getenv("OFFSET_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("OFFSET_POLICY: %w", err)
	}
	start, err := getDateEnv("EPHEMERIS_START")
	if err != nil {
		return nil, err
	}
	end, err := getDateEnv("EPHEMERIS_END")
	if err != nil {
		return nil, err
	}

	durations := map[string]time.Duration{
		"HTTP_TIMEOUT":     ephem.RequestTimeout,
		"SHUTDOWN_TIMEOUT": 10 * time.Second,
		"SEARCH_STEP":      discrete.DefaultStep,
		"SEARCH_EPSILON":   discrete.DefaultEpsilon,
	}
	for key, def := range durations {
		d, err := getDurationEnvOrDefault(key, def)
		if err != nil {
			return nil, err
		}
		durations[key] = d
	}

	cacheSize, err := getIntEnvOrDefault("SNAPSHOT_CACHE_SIZE", 1024)
	if err != nil {
		return nil, err
	}

	cfg := New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPAddr(getEnvOrDefault("HTTP_ADDR", ":8080")),
		WithHTTPTimeout(durations["HTTP_TIMEOUT"]),
		WithShutdownTimeout(durations["SHUTDOWN_TIMEOUT"]),
		WithEphemerisSource(source),
		WithEphemerisWindow(start, end),
		WithHorizonsURL(getEnvOrDefault("HORIZONS_URL", ephem.HorizonsAPIURL)),
		WithSnapshotCacheSize(cacheSize),
		WithOffsetPolicy(policy),
		WithSearch(durations["SEARCH_STEP"], durations["SEARCH_EPSILON"]),
	)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, value)
	}
	return d, nil
}

func getIntEnvOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, value)
	}
	return n, nil
}

// getDateEnv parses a YYYY-MM-DD date as UTC midnight; unset yields zero.
func getDateEnv(key string) (time.Time, error) {
	value := os.Getenv(key)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(snapshot.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: want YYYY-MM-DD", key, value)
	}
	return t, nil
}
