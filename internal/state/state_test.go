package state

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/litescript/lunas/internal/almanac"
	"github.com/litescript/lunas/internal/astro"
	"github.com/litescript/lunas/internal/snapshot"
)

var testStart = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)

func newTestManager(cfg Config) (*Manager, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(testStart)
	cfg.Clock = clock
	return NewManager(cfg, snapshot.Request{LatDeg: -34.6, LonDeg: -58.4, OffsetHours: -3}), clock
}

func strPtr(s string) *string { return &s }

func testResult(date, phase string, fraction float64) *Result {
	return &Result{
		Request: snapshot.Request{Date: date},
		Snapshot: &snapshot.Snapshot{
			Date:                date,
			Phase:               phase,
			IlluminatedFraction: fraction,
			Sun:                 snapshot.BodyEvents{Rise: strPtr(date + " 05:45"), Set: strPtr(date + " 20:10")},
			Moon:                snapshot.BodyEvents{Rise: strPtr(date + " 04:02")},
		},
	}
}

func TestNewManager(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	if m == nil {
		t.Fatal("NewManager returned nil")
	}
	if m.HasData() {
		t.Error("HasData should be false initially")
	}
	if got := m.Request().OffsetHours; got != -3 {
		t.Errorf("Request().OffsetHours = %v, want -3", got)
	}
	if m.maxEvents != 50 {
		t.Errorf("maxEvents = %d, want 50", m.maxEvents)
	}
}

func TestNewManager_ZeroEventsFallsBack(t *testing.T) {
	m := NewManager(Config{}, snapshot.Request{})
	if m.maxEvents != 50 {
		t.Errorf("maxEvents = %d, want 50", m.maxEvents)
	}
	if m.clock == nil {
		t.Error("clock should default to the real clock")
	}
}

func TestManager_Update(t *testing.T) {
	m, clock := newTestManager(DefaultConfig())

	res := testResult("2024-01-10", "Waning Crescent", 0.02)
	m.Update(res, 120*time.Millisecond, nil)

	if !m.HasData() {
		t.Error("HasData should be true after Update")
	}

	v := m.View()
	if v.Snapshot == nil || v.Snapshot.Date != "2024-01-10" {
		t.Fatalf("View().Snapshot = %+v, want date 2024-01-10", v.Snapshot)
	}
	if v.ComputeDuration != 120*time.Millisecond {
		t.Errorf("ComputeDuration = %v, want 120ms", v.ComputeDuration)
	}
	if !v.LastCompute.Equal(clock.Now()) {
		t.Errorf("LastCompute = %v, want %v", v.LastCompute, clock.Now())
	}
	if v.LastError != nil {
		t.Errorf("LastError = %v, want nil", v.LastError)
	}
	if len(v.Illumination) != 1 || v.Illumination[0].Value != 0.02 {
		t.Errorf("Illumination = %+v, want one point at 0.02", v.Illumination)
	}
}

func TestManager_UpdateWithError(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	computeErr := errors.New("out of range")
	m.Update(nil, 50*time.Millisecond, computeErr)

	v := m.View()
	if v.Snapshot != nil {
		t.Error("Snapshot should be nil on error")
	}
	if v.LastError != computeErr {
		t.Errorf("LastError = %v, want %v", v.LastError, computeErr)
	}
	if len(v.Events) != 1 || v.Events[0].Type != EventComputeFailed {
		t.Fatalf("Events = %+v, want one COMPUTE_FAILED", v.Events)
	}
	if v.Events[0].Detail != "out of range" {
		t.Errorf("Detail = %q, want %q", v.Events[0].Detail, "out of range")
	}
}

func TestManager_ErrorKeepsPreviousSnapshot(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	m.Update(testResult("2024-01-10", "Waning Crescent", 0.02), 0, nil)
	m.Update(testResult("2024-01-11", "", 0), 0, errors.New("boom"))

	v := m.View()
	if v.Snapshot == nil || v.Snapshot.Date != "2024-01-10" {
		t.Errorf("Snapshot = %+v, want the last good snapshot", v.Snapshot)
	}
	if v.LastError == nil {
		t.Error("LastError should be set")
	}
	if got := v.Events[len(v.Events)-1].Date; got != "2024-01-11" {
		t.Errorf("failed event date = %q, want 2024-01-11", got)
	}
}

func TestManager_HistoryBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistoryLen = 3
	m, _ := newTestManager(cfg)

	for i := 0; i < 5; i++ {
		date := fmt.Sprintf("2024-01-%02d", 10+i)
		m.Update(testResult(date, "Waning Crescent", float64(i)/10), 0, nil)
	}

	v := m.View()
	if len(v.Illumination) != 3 {
		t.Fatalf("illumination length = %d, want 3", len(v.Illumination))
	}
	if v.Illumination[0].Date != "2024-01-12" {
		t.Errorf("oldest point = %s, want 2024-01-12", v.Illumination[0].Date)
	}
}

func TestManager_PhaseChangeEvent(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	m.Update(testResult("2024-01-10", "Waning Crescent", 0.02), 0, nil)
	if evts := m.RecentEvents(10); len(evts) != 0 {
		t.Fatalf("first update produced events: %+v", evts)
	}

	m.Update(testResult("2024-01-11", "New Moon", 0.00), 0, nil)
	evts := m.RecentEvents(10)
	if len(evts) != 1 {
		t.Fatalf("got %d events, want 1", len(evts))
	}
	e := evts[0]
	if e.Type != EventPhaseChange || e.OldPhase != "Waning Crescent" || e.NewPhase != "New Moon" {
		t.Errorf("event = %+v, want PHASE_CHANGE Waning Crescent -> New Moon", e)
	}

	// Same phase again: nothing new.
	m.Update(testResult("2024-01-12", "New Moon", 0.01), 0, nil)
	if n := len(m.RecentEvents(10)); n != 1 {
		t.Errorf("got %d events after unchanged phase, want 1", n)
	}
}

func TestManager_NoRiseSetEvents(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	res := testResult("2024-06-21", "Waxing Gibbous", 0.98)
	res.Snapshot.Sun = snapshot.BodyEvents{}
	res.Snapshot.Moon = snapshot.BodyEvents{}
	m.Update(res, 0, nil)

	evts := m.RecentEvents(10)
	if len(evts) != 2 {
		t.Fatalf("got %d events, want 2", len(evts))
	}
	if evts[0].Type != EventNoSunEvents || evts[1].Type != EventNoMoonEvents {
		t.Errorf("events = %v, %v; want NO_SUN_EVENTS, NO_MOON_EVENTS", evts[0].Type, evts[1].Type)
	}
}

func TestManager_RecentEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEvents = 5
	m, _ := newTestManager(cfg)

	for i := 0; i < 10; i++ {
		m.Update(nil, 0, fmt.Errorf("failure %d", i))
	}

	events := m.RecentEvents(3)
	if len(events) != 3 {
		t.Fatalf("RecentEvents(3) returned %d events", len(events))
	}
	if events[2].Detail != "failure 9" {
		t.Errorf("newest event = %q, want failure 9", events[2].Detail)
	}

	all := m.RecentEvents(100)
	if len(all) != 5 {
		t.Fatalf("RecentEvents(100) returned %d events, want 5", len(all))
	}
	for i, e := range all {
		if want := fmt.Sprintf("failure %d", 5+i); e.Detail != want {
			t.Errorf("event[%d] = %q, want %q", i, e.Detail, want)
		}
	}
}

func TestManager_StepDays(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	// Empty date resolves against the fake clock in UTC-3: 2024-01-10 12:00.
	req := m.StepDays(1)
	if req.Date != "2024-01-11" {
		t.Errorf("StepDays(1) from today = %q, want 2024-01-11", req.Date)
	}

	req = m.StepDays(-1)
	if req.Date != "2024-01-10" {
		t.Errorf("StepDays(-1) = %q, want 2024-01-10", req.Date)
	}

	m.SetRequest(snapshot.Request{Date: "2024-02-28", OffsetHours: 0})
	if req = m.StepDays(2); req.Date != "2024-03-01" {
		t.Errorf("StepDays across leap day = %q, want 2024-03-01", req.Date)
	}

	if req = m.Today(); req.Date != "2024-01-10" {
		t.Errorf("Today() = %q, want 2024-01-10", req.Date)
	}
}

func TestManager_TodayUsesObserverZone(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC))
	m := NewManager(Config{Clock: clock}, snapshot.Request{OffsetHours: 9})

	if req := m.Today(); req.Date != "2024-01-11" {
		t.Errorf("Today() in UTC+9 = %q, want 2024-01-11", req.Date)
	}
}

func TestManager_ViewIsCopy(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	res := testResult("2024-01-10", "Waning Crescent", 0.02)
	res.SunTrace = &almanac.AltitudeTrace{
		Body:    astro.Sun,
		Samples: []almanac.AltitudeSample{{AltDeg: -10}, {AltDeg: 20}},
	}
	m.Update(res, 0, nil)

	v1 := m.View()
	v1.Snapshot.Phase = "mutated"
	v1.SunTrace.Samples[0].AltDeg = 99
	v1.Illumination[0].Value = 42

	v2 := m.View()
	if v2.Snapshot.Phase != "Waning Crescent" {
		t.Error("modifying view snapshot affected state")
	}
	if v2.SunTrace.Samples[0].AltDeg != -10 {
		t.Error("modifying view trace affected state")
	}
	if v2.Illumination[0].Value != 0.02 {
		t.Error("modifying view history affected state")
	}
	if v2.MoonTrace != nil {
		t.Error("MoonTrace should be nil when not computed")
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m, _ := newTestManager(DefaultConfig())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Update(testResult("2024-01-10", "New Moon", float64(j)/100), time.Millisecond, nil)
				m.StepDays(1)
			}
		}(i)
	}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.View()
				_ = m.RecentEvents(5)
				_ = m.HasData()
				_ = m.Request()
			}
		}()
	}

	wg.Wait()
}
