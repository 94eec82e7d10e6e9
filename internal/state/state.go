// Package state provides thread-safe state management for the interactive
// almanac: the day being viewed, its last computed snapshot and traces,
// and a short log of notable changes.
package state

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/litescript/lunas/internal/almanac"
	"github.com/litescript/lunas/internal/snapshot"
)

// EventType represents the type of state change event.
type EventType string

const (
	EventPhaseChange   EventType = "PHASE_CHANGE"
	EventNoSunEvents   EventType = "NO_SUN_EVENTS"
	EventNoMoonEvents  EventType = "NO_MOON_EVENTS"
	EventComputeFailed EventType = "COMPUTE_FAILED"
)

// Event represents a notable change between consecutive computations.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"`
	OldPhase  string    `json:"old_phase,omitempty"`
	NewPhase  string    `json:"new_phase,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Result is the output of one computation for a request.
type Result struct {
	Request   snapshot.Request
	Snapshot  *snapshot.Snapshot
	SunTrace  *almanac.AltitudeTrace
	MoonTrace *almanac.AltitudeTrace
}

// TimeSeries is a single data point keyed by the almanac date it belongs to.
type TimeSeries struct {
	Date  string
	Value float64
}

// Manager handles all shared application state with thread-safe access.
type Manager struct {
	mu    sync.RWMutex
	clock clockwork.Clock

	request snapshot.Request

	// Current state
	current         *Result
	lastCompute     time.Time
	lastError       error
	computeDuration time.Duration

	// History buffers
	illumination  []TimeSeries
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int
}

// Config holds configuration for the state manager.
type Config struct {
	MaxHistoryLen int
	MaxEvents     int
	Clock         clockwork.Clock
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistoryLen: 30,
		MaxEvents:     50,
	}
}

// NewManager creates a new state manager viewing req.
func NewManager(cfg Config, req snapshot.Request) *Manager {
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		clock:         clock,
		request:       req,
		maxHistoryLen: cfg.MaxHistoryLen,
		maxEvents:     maxEvents,
		events:        make([]Event, 0, maxEvents),
	}
}

// Request returns the request currently being viewed.
func (m *Manager) Request() snapshot.Request {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.request
}

// SetRequest replaces the request being viewed.
func (m *Manager) SetRequest(req snapshot.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.request = req
}

// StepDays moves the viewed date by n days and returns the new request.
// An empty date is taken as today in the observer's zone.
func (m *Manager) StepDays(n int) snapshot.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	loc := snapshot.OffsetZone(m.request.OffsetHours)
	day, err := time.ParseInLocation(snapshot.DateLayout, m.request.Date, loc)
	if err != nil {
		now := m.clock.Now().In(loc)
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	}
	m.request.Date = day.AddDate(0, 0, n).Format(snapshot.DateLayout)
	return m.request
}

// Today resets the viewed date to the current date in the observer's zone.
func (m *Manager) Today() snapshot.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.request.Date = m.clock.Now().In(snapshot.OffsetZone(m.request.OffsetHours)).Format(snapshot.DateLayout)
	return m.request
}

// Update atomically records the outcome of one computation.
func (m *Manager) Update(res *Result, computeDuration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCompute = m.clock.Now()
	m.lastError = err
	m.computeDuration = computeDuration

	if err != nil {
		date := m.request.Date
		if res != nil {
			date = res.Request.Date
		}
		m.addEvent(Event{
			Type:      EventComputeFailed,
			Timestamp: m.lastCompute,
			Date:      date,
			Detail:    err.Error(),
		})
		return
	}
	if res == nil || res.Snapshot == nil {
		return
	}

	m.detectEvents(res.Snapshot)
	m.current = res

	m.illumination = append(m.illumination, TimeSeries{
		Date:  res.Snapshot.Date,
		Value: res.Snapshot.IlluminatedFraction,
	})
	if len(m.illumination) > m.maxHistoryLen {
		m.illumination = m.illumination[1:]
	}
}

// detectEvents compares a new snapshot with the previous one.
func (m *Manager) detectEvents(next *snapshot.Snapshot) {
	now := m.lastCompute

	if m.current != nil && m.current.Snapshot != nil {
		prev := m.current.Snapshot
		if prev.Phase != next.Phase {
			m.addEvent(Event{
				Type:      EventPhaseChange,
				Timestamp: now,
				Date:      next.Date,
				OldPhase:  prev.Phase,
				NewPhase:  next.Phase,
			})
		}
	}

	if next.Sun.Rise == nil && next.Sun.Set == nil {
		m.addEvent(Event{
			Type:      EventNoSunEvents,
			Timestamp: now,
			Date:      next.Date,
			Detail:    "sun neither rises nor sets",
		})
	}
	if next.Moon.Rise == nil && next.Moon.Set == nil {
		m.addEvent(Event{
			Type:      EventNoMoonEvents,
			Timestamp: now,
			Date:      next.Date,
			Detail:    "moon neither rises nor sets",
		})
	}
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// View represents an immutable view of current state.
type View struct {
	Request         snapshot.Request
	Snapshot        *snapshot.Snapshot
	SunTrace        *almanac.AltitudeTrace
	MoonTrace       *almanac.AltitudeTrace
	LastCompute     time.Time
	LastError       error
	ComputeDuration time.Duration
	Illumination    []TimeSeries
	Events          []Event
}

// View returns a consistent copy of current state.
func (m *Manager) View() View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	illum := make([]TimeSeries, len(m.illumination))
	copy(illum, m.illumination)

	v := View{
		Request:         m.request,
		LastCompute:     m.lastCompute,
		LastError:       m.lastError,
		ComputeDuration: m.computeDuration,
		Illumination:    illum,
		Events:          m.getEventsOrdered(),
	}
	if m.current != nil {
		if m.current.Snapshot != nil {
			s := *m.current.Snapshot
			v.Snapshot = &s
		}
		v.SunTrace = copyTrace(m.current.SunTrace)
		v.MoonTrace = copyTrace(m.current.MoonTrace)
	}
	return v
}

func copyTrace(t *almanac.AltitudeTrace) *almanac.AltitudeTrace {
	if t == nil {
		return nil
	}
	c := *t
	c.Samples = make([]almanac.AltitudeSample, len(t.Samples))
	copy(c.Samples, t.Samples)
	return &c
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events.
func (m *Manager) RecentEvents(n int) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// HasData returns true if at least one computation has succeeded.
func (m *Manager) HasData() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}
