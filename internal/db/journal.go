// Package db is the sqlite journal of fired block events.
//
// Each classifier run opens a session row; every frame that fires a start
// or stop adds a block_events row with the per-hand rules, decisions and
// speeds. The schema is managed by golang-migrate from embedded migrations.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/timeutil"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrUnknownSession is returned when a session id has no sessions row.
var ErrUnknownSession = errors.New("unknown session")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Journal wraps the sqlite handle.
type Journal struct {
	*sql.DB
	path  string
	clock timeutil.Clock
}

// Open opens (or creates) the journal at path and migrates it to the
// latest schema. Use ":memory:" only with a single connection.
func Open(path string) (*Journal, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}

	j := &Journal{DB: sqlDB, path: path, clock: timeutil.RealClock{}}
	if err := j.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return j, nil
}

// Path is the location the journal was opened from.
func (j *Journal) Path() string { return j.path }

// SetClock replaces the clock used for timestamps.
func (j *Journal) SetClock(c timeutil.Clock) { j.clock = c }

// SessionRow is one sessions row.
type SessionRow struct {
	ID        string
	Source    string
	Config    *config.BlockConfig
	StartedAt time.Time
}

// EventRow is one block_events row.
type EventRow struct {
	SessionID    string
	Frame        uint64
	Event        block.Event
	Forced       bool
	MainRule     string
	OffRule      string
	MainDecision string
	OffDecision  string
	MainSpeed    float64
	OffSpeed     float64
	Smoothed     bool
	RecordedAt   time.Time
}

func (e *EventRow) String() string {
	forced := ""
	if e.Forced {
		forced = " (forced)"
	}
	return fmt.Sprintf("frame %d: %s%s main=%s/%s off=%s/%s",
		e.Frame, e.Event.AnimationEvent(), forced, e.MainRule, e.MainDecision, e.OffRule, e.OffDecision)
}

// Summary aggregates one session's events.
type Summary struct {
	SessionID  string
	Starts     int
	Stops      int
	Forced     int
	FirstFrame uint64
	LastFrame  uint64
}

// StartSession inserts a sessions row with a fresh id and returns a
// recorder that journals events under it. cfg is stored fully resolved so
// the thresholds in force are recoverable later.
func (j *Journal) StartSession(source string, cfg *config.BlockConfig) (*SessionLog, error) {
	if cfg == nil {
		cfg = config.EmptyBlockConfig()
	}
	cfgJSON, err := json.Marshal(cfg.Resolved())
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	id := uuid.NewString()
	_, err = j.Exec(
		`INSERT INTO sessions (session_id, source, config_json, started_at) VALUES (?, ?, ?, ?)`,
		id, source, string(cfgJSON), j.clock.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return &SessionLog{journal: j, id: id}, nil
}

// RecordEvent stores one fired frame. Outcomes with no event are ignored.
func (j *Journal) RecordEvent(sessionID string, o block.Outcome) error {
	if o.Event == block.EventNone {
		return nil
	}
	_, err := j.Exec(`
		INSERT INTO block_events (
			session_id, frame, event, forced,
			main_rule, off_rule, main_decision, off_decision,
			main_speed, off_speed, smoothed, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, int64(o.Frame), o.Event.String(), o.Forced,
		o.Main.Rule.String(), o.Off.Rule.String(), o.Main.Decision.String(), o.Off.Decision.String(),
		o.Main.Features.Speed, o.Off.Features.Speed, o.Smoothed, j.clock.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert block event: %w", err)
	}
	return nil
}

// Session loads a sessions row.
func (j *Journal) Session(sessionID string) (*SessionRow, error) {
	var (
		row     SessionRow
		cfgJSON string
	)
	err := j.QueryRow(
		`SELECT session_id, source, config_json, started_at FROM sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&row.ID, &row.Source, &cfgJSON, &row.StartedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	row.Config = config.EmptyBlockConfig()
	if err := json.Unmarshal([]byte(cfgJSON), row.Config); err != nil {
		return nil, fmt.Errorf("failed to decode session config: %w", err)
	}
	return &row, nil
}

// Sessions lists every session, newest first.
func (j *Journal) Sessions() ([]SessionRow, error) {
	rows, err := j.Query(`SELECT session_id, source, started_at FROM sessions ORDER BY started_at DESC, session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.ID, &s.Source, &s.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Events returns a session's events in frame order.
func (j *Journal) Events(sessionID string) ([]EventRow, error) {
	rows, err := j.Query(`
		SELECT session_id, frame, event, forced,
		       main_rule, off_rule, main_decision, off_decision,
		       main_speed, off_speed, smoothed, recorded_at
		FROM block_events
		WHERE session_id = ?
		ORDER BY frame, event_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRow
	for rows.Next() {
		var (
			e     EventRow
			frame int64
			event string
		)
		if err := rows.Scan(
			&e.SessionID, &frame, &event, &e.Forced,
			&e.MainRule, &e.OffRule, &e.MainDecision, &e.OffDecision,
			&e.MainSpeed, &e.OffSpeed, &e.Smoothed, &e.RecordedAt,
		); err != nil {
			return nil, err
		}
		e.Frame = uint64(frame)
		ev, ok := block.ParseEvent(event)
		if !ok {
			return nil, fmt.Errorf("unknown event %q at frame %d", event, frame)
		}
		e.Event = ev
		out = append(out, e)
	}
	return out, rows.Err()
}

// Summary counts a session's starts, stops and forced stops.
func (j *Journal) Summary(sessionID string) (Summary, error) {
	if _, err := j.Session(sessionID); err != nil {
		return Summary{}, err
	}

	s := Summary{SessionID: sessionID}
	var first, last sql.NullInt64
	err := j.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN event = 'start' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN event = 'stop' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN forced THEN 1 ELSE 0 END), 0),
			MIN(frame),
			MAX(frame)
		FROM block_events
		WHERE session_id = ?`, sessionID,
	).Scan(&s.Starts, &s.Stops, &s.Forced, &first, &last)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarise session: %w", err)
	}
	s.FirstFrame = uint64(first.Int64)
	s.LastFrame = uint64(last.Int64)
	return s, nil
}

// SessionLog journals one session's events. It implements block.Recorder.
type SessionLog struct {
	journal *Journal
	id      string
}

// ID returns the session id.
func (l *SessionLog) ID() string { return l.id }

// Record implements block.Recorder.
func (l *SessionLog) Record(o block.Outcome) error {
	return l.journal.RecordEvent(l.id, o)
}
