// Command lunas computes Sun and Moon rise/set times, the lunar phase and
// illumination for an observer, as a terminal dashboard, headless output
// or an HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/litescript/lunas/internal/almanac"
	"github.com/litescript/lunas/internal/config"
	"github.com/litescript/lunas/internal/ephem"
	"github.com/litescript/lunas/internal/httpapi"
	"github.com/litescript/lunas/internal/logging"
	"github.com/litescript/lunas/internal/observability"
	"github.com/litescript/lunas/internal/snapshot"
	"github.com/litescript/lunas/internal/state"
	"github.com/litescript/lunas/internal/ui"
	"github.com/litescript/lunas/internal/version"
)

// CLI flags
var (
	serveMode   bool
	jsonMode    bool
	summaryMode bool
	phaseDays   int
	latFlag     string
	lonFlag     string
	offsetFlag  string
	dateFlag    string
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logLevel := flag.String("log-level", cfg.LogLevel.String(), "Log level (debug, info, warn, error)")
	source := flag.String("source", cfg.EphemerisSource.String(), "Ephemeris source (meeus, horizons)")
	addr := flag.String("addr", cfg.HTTPAddr, "HTTP listen address for -serve")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(&serveMode, "serve", false, "Run the HTTP API")
	flag.BoolVar(&jsonMode, "json", false, "Print the snapshot as JSON")
	flag.BoolVar(&summaryMode, "summary", false, "Print a text summary instead of the TUI")
	flag.IntVar(&phaseDays, "phases", 0, "List principal lunar phases for this many days")
	flag.StringVar(&latFlag, "lat", "", "Observer latitude in degrees, north positive")
	flag.StringVar(&lonFlag, "lon", "", "Observer longitude in degrees, east positive")
	flag.StringVar(&offsetFlag, "offset", "", "UTC offset of the local calendar in hours")
	flag.StringVar(&dateFlag, "date", "", "Local date YYYY-MM-DD (default: today)")
	flag.Parse()

	if *showVersion {
		fmt.Println("lunas", version.Version)
		return
	}

	mode, err := ephem.ParseMode(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	config.WithEphemerisSource(mode)(cfg)
	config.WithLogLevel(*logLevel)(cfg)
	config.WithHTTPAddr(*addr)(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := logging.Setup(cfg.Environment, cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shared := ephem.NewShared(func() (ephem.Provider, error) {
		return loadProvider(ctx, cfg, logger)
	})

	if serveMode {
		if err := runServer(ctx, cfg, shared, logger); err != nil {
			logger.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
		return
	}

	req, err := parseRequest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	headless := jsonMode || summaryMode || phaseDays != 0 || !term.IsTerminal(int(os.Stdout.Fd()))
	if headless {
		if err := runHeadless(os.Stdout, cfg, shared, req); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal; only debug runs keep logging to stderr.
	if !logger.Debug().Enabled() {
		logger = logging.Discard()
	}
	if err := runTUI(cfg, shared, req, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// loadProvider builds the configured ephemeris provider.
func loadProvider(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ephem.Provider, error) {
	if cfg.EphemerisSource != ephem.ModeHorizons {
		return ephem.NewMeeusProvider(), nil
	}

	anchor := time.Now().UTC()
	if dateFlag != "" {
		if d, err := time.Parse(snapshot.DateLayout, dateFlag); err == nil {
			anchor = d
		}
	}
	start, end := cfg.EphemerisWindow(anchor)

	client := ephem.NewHorizonsClient(
		ephem.WithBaseURL(cfg.HorizonsURL),
		ephem.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		ephem.WithLogger(logger),
	)
	loadStart := time.Now()
	p, err := client.Load(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("load horizons table: %w", err)
	}
	logger.Info().
		Time("start", start).
		Time("end", end).
		Dur("duration", time.Since(loadStart)).
		Msg("ephemeris loaded")
	return p, nil
}

func runServer(ctx context.Context, cfg *config.Config, shared *ephem.Shared, logger zerolog.Logger) error {
	metrics := observability.NewMetrics(nil)
	srv, err := httpapi.NewServer(cfg, shared, metrics, logger)
	if err != nil {
		return err
	}

	// Load eagerly; requests arriving first block on the same load.
	go func() {
		if _, err := shared.Get(); err != nil {
			logger.Error().Err(err).Msg("ephemeris load failed")
			return
		}
		metrics.EphemerisReady.Set(1)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func parseRequest() (snapshot.Request, error) {
	lat, err := snapshot.ParseNumber("lat", latFlag)
	if err != nil {
		return snapshot.Request{}, err
	}
	lon, err := snapshot.ParseNumber("lon", lonFlag)
	if err != nil {
		return snapshot.Request{}, err
	}
	offset, err := snapshot.ParseNumber("offset", offsetFlag)
	if err != nil {
		return snapshot.Request{}, err
	}
	return snapshot.Request{Date: dateFlag, LatDeg: lat, LonDeg: lon, OffsetHours: offset}, nil
}

func newAssembler(cfg *config.Config, p ephem.Provider, logger zerolog.Logger) *snapshot.Assembler {
	return snapshot.NewAssembler(p,
		snapshot.WithOffsetPolicy(cfg.OffsetPolicy),
		snapshot.WithSearchOptions(cfg.SearchOptions()),
		snapshot.WithLogger(logger),
	)
}

// runHeadless writes the requested outputs once. With no output flag the
// summary is printed.
func runHeadless(w io.Writer, cfg *config.Config, shared *ephem.Shared, req snapshot.Request) error {
	p, err := shared.Get()
	if err != nil {
		return err
	}
	asm := newAssembler(cfg, p, logging.Discard())

	if phaseDays != 0 {
		report, err := asm.Phases(req, phaseDays)
		if err != nil {
			return err
		}
		if jsonMode {
			return report.WriteJSON(w)
		}
		snapshot.WritePhases(w, report)
		if !summaryMode {
			return nil
		}
		fmt.Fprintln(w)
	}

	snap, err := asm.Compute(req)
	if err != nil {
		return err
	}
	if jsonMode {
		return snap.WriteJSON(w)
	}
	snapshot.WriteSummary(w, snap)
	return nil
}

func runTUI(cfg *config.Config, shared *ephem.Shared, req snapshot.Request, logger zerolog.Logger) error {
	compute := func(r snapshot.Request) (*state.Result, error) {
		res := &state.Result{Request: r}
		p, err := shared.Get()
		if err != nil {
			return res, err
		}
		asm := newAssembler(cfg, p, logger)

		snap, err := asm.Compute(r)
		if err != nil {
			return res, err
		}
		res.Snapshot = snap

		res.SunTrace, res.MoonTrace, err = asm.Traces(r, almanac.DefaultTraceStep)
		if err != nil {
			logger.Warn().Err(err).Msg("altitude traces unavailable")
		}
		return res, nil
	}

	stateMgr := state.NewManager(state.DefaultConfig(), req)
	model := ui.New(stateMgr, compute)

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
