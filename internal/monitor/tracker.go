// Package monitor keeps a rolling view of a running classifier session
// and serves it over HTTP for live debugging.
package monitor

import (
	"sync"
	"time"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/timeutil"
)

// DefaultCapacity is the number of recent outcomes a Tracker keeps.
const DefaultCapacity = 900

// Tracker accumulates counters over every observed outcome and retains the
// most recent ones in a ring. It is safe for concurrent use: the frame loop
// calls Observe while HTTP handlers read.
type Tracker struct {
	mu      sync.Mutex
	clock   timeutil.Clock
	started time.Time

	ring []block.Outcome
	next int
	full bool

	frames     int
	evaluated  int
	starts     int
	stops      int
	forced     int
	suppressed int
	skips      map[block.SkipReason]int

	lastEvent   block.Event
	lastEventAt time.Time
}

// NewTracker returns a tracker holding up to capacity outcomes. A nil clock
// uses the wall clock.
func NewTracker(capacity int, clock timeutil.Clock) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Tracker{
		clock:   clock,
		started: clock.Now(),
		ring:    make([]block.Outcome, capacity),
		skips:   make(map[block.SkipReason]int),
	}
}

// Observe records one Update result.
func (t *Tracker) Observe(o block.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.ring[t.next] = o
	t.next++
	if t.next == len(t.ring) {
		t.next = 0
		t.full = true
	}

	t.frames++
	if o.Evaluated() {
		t.evaluated++
	} else {
		t.skips[o.Skip]++
	}
	switch o.Event {
	case block.EventStart:
		t.starts++
	case block.EventStop:
		t.stops++
		if o.Forced {
			t.forced++
		}
	}
	if o.Suppressed != block.EventNone {
		t.suppressed++
	}
	if o.Event != block.EventNone {
		t.lastEvent = o.Event
		t.lastEventAt = t.clock.Now()
	}
}

// Recent returns up to n of the latest outcomes, oldest first. n <= 0
// returns everything retained.
func (t *Tracker) Recent(n int) []block.Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := t.next
	if t.full {
		size = len(t.ring)
	}
	if n <= 0 || n > size {
		n = size
	}
	out := make([]block.Outcome, n)
	start := t.next - n
	if start < 0 {
		start += len(t.ring)
	}
	for i := range out {
		out[i] = t.ring[(start+i)%len(t.ring)]
	}
	return out
}

// Status is the JSON body served at /api/status.
type Status struct {
	Frames      int            `json:"frames"`
	Evaluated   int            `json:"evaluated"`
	Starts      int            `json:"starts"`
	Stops       int            `json:"stops"`
	Forced      int            `json:"forced"`
	Suppressed  int            `json:"suppressed"`
	Skips       map[string]int `json:"skips"`
	Blocking    bool           `json:"blocking"`
	LastEvent   string         `json:"last_event,omitempty"`
	LastEventAt *time.Time     `json:"last_event_at,omitempty"`
	Uptime      string         `json:"uptime"`
}

// Status snapshots the counters.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Status{
		Frames:     t.frames,
		Evaluated:  t.evaluated,
		Starts:     t.starts,
		Stops:      t.stops,
		Forced:     t.forced,
		Suppressed: t.suppressed,
		Skips:      make(map[string]int, len(t.skips)),
		Blocking:   t.lastEvent == block.EventStart,
		Uptime:     t.clock.Since(t.started).Round(time.Second).String(),
	}
	for r, n := range t.skips {
		st.Skips[r.String()] = n
	}
	if t.lastEvent != block.EventNone {
		at := t.lastEventAt
		st.LastEvent = t.lastEvent.String()
		st.LastEventAt = &at
	}
	return st
}
