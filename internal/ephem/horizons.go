package ephem

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/logging"
)

const (
	// HorizonsAPIURL is the JPL Horizons JSON API endpoint.
	HorizonsAPIURL = "https://ssd.jpl.nasa.gov/api/horizons.api"

	// DefaultTableStep is the default spacing of loaded samples.
	DefaultTableStep = time.Hour

	// RequestTimeout is the HTTP request timeout.
	RequestTimeout = 30 * time.Second
)

// NAIF IDs of the tabulated bodies.
var horizonsTargets = map[astro.Body]int{
	astro.Sun:  10,
	astro.Moon: 301,
}

// HorizonsClient loads geocentric vector tables from JPL Horizons.
type HorizonsClient struct {
	baseURL string
	client  *http.Client
	step    time.Duration
	log     zerolog.Logger
}

// HorizonsOption configures a HorizonsClient.
type HorizonsOption func(*HorizonsClient)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) HorizonsOption {
	return func(c *HorizonsClient) { c.baseURL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) HorizonsOption {
	return func(c *HorizonsClient) { c.client = hc }
}

// WithStep sets the sample spacing of loaded tables.
func WithStep(d time.Duration) HorizonsOption {
	return func(c *HorizonsClient) { c.step = d }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) HorizonsOption {
	return func(c *HorizonsClient) { c.log = l }
}

// NewHorizonsClient creates a new Horizons API client.
func NewHorizonsClient(opts ...HorizonsOption) *HorizonsClient {
	c := &HorizonsClient{
		baseURL: HorizonsAPIURL,
		client:  &http.Client{Timeout: RequestTimeout},
		step:    DefaultTableStep,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches Sun and Moon vectors covering [start, end) and returns them
// as a TableProvider. Both bodies are fetched concurrently.
func (c *HorizonsClient) Load(ctx context.Context, start, end time.Time) (*TableProvider, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("horizons load: start %s not before end %s", start, end)
	}
	if c.step <= 0 {
		return nil, fmt.Errorf("horizons load: step %s must be positive", c.step)
	}

	// Pad so the interpolation window and the half-open end are covered.
	pad := 2 * c.step
	from, to := start.Add(-pad), end.Add(pad)

	g, gctx := errgroup.WithContext(ctx)
	results := make([][]Sample, len(horizonsTargets))
	bodies := []astro.Body{astro.Sun, astro.Moon}

	for i, body := range bodies {
		i, body := i, body
		g.Go(func() error {
			began := time.Now()
			samples, err := c.fetchVectors(gctx, horizonsTargets[body], from, to)
			if err != nil {
				return fmt.Errorf("%s vectors: %w", body, err)
			}
			c.log.Debug().
				Str("body", body.String()).
				Int("samples", len(samples)).
				Dur("took", time.Since(began)).
				Msg("horizons vectors loaded")
			results[i] = samples
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	samples := make(map[astro.Body][]Sample, len(bodies))
	for i, body := range bodies {
		samples[body] = results[i]
	}
	return NewTableProvider("horizons", samples)
}

// fetchVectors queries geocentric ICRF position vectors for one target.
func (c *HorizonsClient) fetchVectors(ctx context.Context, naifID int, start, end time.Time) ([]Sample, error) {
	// Values must be quoted with single quotes
	params := url.Values{}
	params.Set("format", "json")
	params.Set("COMMAND", fmt.Sprintf("'%d'", naifID))
	params.Set("OBJ_DATA", "NO")
	params.Set("MAKE_EPHEM", "YES")
	params.Set("EPHEM_TYPE", "VECTORS")
	params.Set("CENTER", "'500@399'") // Geocenter
	params.Set("REF_PLANE", "FRAME")  // Earth mean equator
	params.Set("REF_SYSTEM", "ICRF")
	params.Set("VEC_TABLE", "'1'") // Position only
	params.Set("VEC_LABELS", "YES")
	params.Set("OUT_UNITS", "'KM-S'")
	params.Set("START_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(start)))
	params.Set("STOP_TIME", fmt.Sprintf("'%s'", formatHorizonsTime(end)))
	params.Set("STEP_SIZE", fmt.Sprintf("'%s'", formatStepSize(c.step)))

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build horizons request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("horizons request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("horizons returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return parseVectorResponse(body)
}

// horizonsResponse represents the JSON API response.
type horizonsResponse struct {
	Signature struct {
		Version string `json:"version"`
		Source  string `json:"source"`
	} `json:"signature"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// parseVectorResponse parses the Horizons JSON response for vector data.
func parseVectorResponse(body []byte) ([]Sample, error) {
	var resp horizonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("horizons error: %s", strings.TrimSpace(resp.Error))
	}
	return parseVectorTable(resp.Result)
}

// parseVectorTable extracts samples between the $$SOE and $$EOE markers.
//
// Each record is an epoch line followed by a vector line:
//
//	2460310.500000000 = A.D. 2024-Jan-01 00:00:00.0000 TDB
//	 X = 2.604541574000860E+07 Y =-1.327405532005498E+08 Z =-5.754334108476464E+07
//
// Vectors are ICRF (J2000 mean equator) and are precessed to the mean
// equator of date.
func parseVectorTable(result string) ([]Sample, error) {
	soeIdx := strings.Index(result, "$$SOE")
	eoeIdx := strings.Index(result, "$$EOE")
	if soeIdx == -1 || eoeIdx == -1 || soeIdx >= eoeIdx {
		return nil, fmt.Errorf("could not find vector data markers")
	}

	var (
		samples []Sample
		epoch   astro.Instant
		haveEp  bool
	)

	for _, line := range strings.Split(result[soeIdx+5:eoeIdx], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.Contains(line, "A.D.") {
			at, err := parseEpochLine(line)
			if err != nil {
				return nil, err
			}
			epoch, haveEp = at, true
			continue
		}
		if !haveEp {
			continue
		}

		var (
			vec astro.Vec3
			err error
		)
		if strings.Contains(line, "X =") || strings.Contains(line, "X=") {
			vec, err = parseVectorLabeled(line)
		} else {
			vec, err = parseVectorUnlabeled(line)
		}
		if err != nil {
			continue // Skip velocity or range rows
		}

		samples = append(samples, Sample{
			At:  epoch,
			Pos: astro.PrecessFromJ2000(vec, epoch.JDE()),
		})
		haveEp = false
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("could not parse vector data")
	}
	return samples, nil
}

// parseEpochLine parses "2460310.500000000 = A.D. 2024-Jan-01 00:00:00.0000 TDB".
// TDB epochs are converted to UT with ΔT.
func parseEpochLine(line string) (astro.Instant, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return astro.Instant{}, fmt.Errorf("empty epoch line")
	}
	jd, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return astro.Instant{}, fmt.Errorf("invalid epoch %q: %w", fields[0], err)
	}

	scale := fields[len(fields)-1]
	if scale == "TDB" || scale == "TT" {
		approx := astro.FromJD(jd)
		jd -= approx.DeltaT() / 86400
	}
	return astro.FromJD(jd), nil
}

// parseVectorLabeled parses: X = 1.23E+00 Y = 2.34E+00 Z = 3.45E-01
func parseVectorLabeled(line string) (astro.Vec3, error) {
	// Split on = and parse pairs
	parts := strings.Split(line, "=")
	if len(parts) < 4 {
		return astro.Vec3{}, fmt.Errorf("invalid labeled format")
	}

	vals := make([]float64, 3)
	for i := 0; i < 3; i++ {
		fields := strings.Fields(parts[i+1])
		if len(fields) == 0 {
			return astro.Vec3{}, fmt.Errorf("missing component %d", i)
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return astro.Vec3{}, err
		}
		vals[i] = v
	}

	return astro.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// parseVectorUnlabeled parses: 1.23E+00  2.34E+00  3.45E-01
func parseVectorUnlabeled(line string) (astro.Vec3, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return astro.Vec3{}, fmt.Errorf("insufficient fields: %d", len(fields))
	}

	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return astro.Vec3{}, err
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return astro.Vec3{}, err
	}
	z, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return astro.Vec3{}, err
	}

	return astro.Vec3{X: x, Y: y, Z: z}, nil
}

// formatHorizonsTime formats a time for Horizons API.
func formatHorizonsTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// formatStepSize formats a duration as a Horizons step size.
func formatStepSize(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes >= 60 && minutes%60 == 0 {
		return fmt.Sprintf("%d h", minutes/60)
	}
	return fmt.Sprintf("%d m", max(minutes, 1))
}
