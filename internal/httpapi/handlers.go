package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/ephem"
	"github.com/litescript/lunas/internal/snapshot"
)

// DefaultPhaseDays is the listing length when the days parameter is absent.
const DefaultPhaseDays = 30

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "lunas API running"})
}

type nowResponse struct {
	UTC          string  `json:"utc"`
	JulianDateUT float64 `json:"jd_ut"`
	JulianDateTT float64 `json:"jd_tt"`
	DeltaT       float64 `json:"delta_t_seconds"`
}

func (s *Server) handleNow(w http.ResponseWriter, _ *http.Request) {
	now := astro.At(s.clock.Now())
	writeJSON(w, http.StatusOK, nowResponse{
		UTC:          now.Time().Format(time.RFC3339),
		JulianDateUT: now.JD(),
		JulianDateTT: now.JDE(),
		DeltaT:       now.DeltaT(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.source.Ready() {
		s.metrics.EphemerisReady.Set(0)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "ephemeris not loaded",
		})
		return
	}
	s.metrics.EphemerisReady.Set(1)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, "snapshot", err)
		return
	}

	snap, err := s.snapshot(r.Context(), req)
	if err != nil {
		s.writeError(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePhases(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := parseRequest(q)
	if err != nil {
		s.writeError(w, "phases", err)
		return
	}

	days := DefaultPhaseDays
	if raw := strings.TrimSpace(q.Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, "phases", &snapshot.InputError{Field: "days", Value: raw, Reason: "is not an integer"})
			return
		}
		days = n
	}

	asm, err := s.assembler(r.Context())
	if err != nil {
		s.writeError(w, "phases", err)
		return
	}

	start := time.Now()
	report, err := asm.Phases(req, days)
	s.metrics.ComputeDuration.WithLabelValues("phases").Observe(time.Since(start).Seconds())
	if err != nil {
		s.writeError(w, "phases", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseRequest reads lat, lon, offset and the optional date.
func parseRequest(q url.Values) (snapshot.Request, error) {
	lat, err := snapshot.ParseNumber("lat", q.Get("lat"))
	if err != nil {
		return snapshot.Request{}, err
	}
	lon, err := snapshot.ParseNumber("lon", q.Get("lon"))
	if err != nil {
		return snapshot.Request{}, err
	}
	offset, err := snapshot.ParseNumber("offset", q.Get("offset"))
	if err != nil {
		return snapshot.Request{}, err
	}
	return snapshot.Request{
		Date:        strings.TrimSpace(q.Get("date")),
		LatDeg:      lat,
		LonDeg:      lon,
		OffsetHours: offset,
	}, nil
}

// assembler binds a snapshot assembler to the loaded provider, cut off
// when ctx is done.
func (s *Server) assembler(ctx context.Context) (*snapshot.Assembler, error) {
	p, err := s.source.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	return snapshot.NewAssembler(ephem.WithContext(ctx, p),
		snapshot.WithClock(s.clock),
		snapshot.WithOffsetPolicy(s.policy),
		snapshot.WithSearchOptions(s.search),
		snapshot.WithLogger(s.log),
	), nil
}

// snapshot serves req from the cache, coalescing concurrent misses for
// the same key into one computation. Coalesced callers share the first
// caller's deadline.
func (s *Server) snapshot(ctx context.Context, req snapshot.Request) (*snapshot.Snapshot, error) {
	asm, err := s.assembler(ctx)
	if err != nil {
		return nil, err
	}

	day, err := asm.Resolve(req)
	if err != nil {
		return nil, err
	}
	req.Date = day.Date
	key := cacheKey(req)

	if snap, ok := s.cache.Get(key); ok {
		s.metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return snap, nil
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		start := time.Now()
		snap, err := asm.Compute(req)
		s.metrics.ComputeDuration.WithLabelValues("snapshot").Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		s.cache.Add(key, snap)
		return snap, nil
	})
	if shared {
		s.metrics.SnapshotCache.WithLabelValues("shared").Inc()
	} else {
		s.metrics.SnapshotCache.WithLabelValues("miss").Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(*snapshot.Snapshot), nil
}

func cacheKey(req snapshot.Request) string {
	return fmt.Sprintf("%s|%g|%g|%g", req.Date, req.LatDeg, req.LonDeg, req.OffsetHours)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}
