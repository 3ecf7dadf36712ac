package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/equipment"
	"github.com/banshee-data/blockvr/internal/features"
	"github.com/banshee-data/blockvr/internal/hysteresis"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/testutil"
	"github.com/banshee-data/blockvr/internal/timeutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	monitoring.SetLogger(nil)
}

func setupTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func startOutcome(frame uint64) block.Outcome {
	return block.Outcome{
		Frame: frame,
		Event: block.EventStart,
		Main: block.Hand{
			Rule:     equipment.RuleUnarmed,
			Decision: hysteresis.ShouldStart,
			Features: features.Set{Speed: 0.5},
		},
		Off: block.Hand{
			Rule:     equipment.RuleUnarmed,
			Decision: hysteresis.ShouldStart,
			Features: features.Set{Speed: 0.4},
		},
	}
}

func TestOpen_Migrates(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	version, dirty, err := j.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Reopening an already migrated file is a no-op.
	path := filepath.Join(t.TempDir(), "again.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	j.SetClock(clock)

	frames := 12
	log, err := j.StartSession("replay:guard.jsonl", &config.BlockConfig{BlockCooldownFrames: &frames})
	require.NoError(t, err)
	_, err = uuid.Parse(log.ID())
	require.NoError(t, err, "session ids are uuids")

	row, err := j.Session(log.ID())
	require.NoError(t, err)
	assert.Equal(t, "replay:guard.jsonl", row.Source)
	assert.True(t, row.StartedAt.Equal(clock.Now()))
	assert.Equal(t, 12, row.Config.GetBlockCooldownFrames())
	// Stored resolved: unset options carry their defaults explicitly.
	require.NotNil(t, row.Config.MaxSpeedEnter)
	assert.Equal(t, 0.02, *row.Config.MaxSpeedEnter)

	sessions, err := j.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, log.ID(), sessions[0].ID)
}

func TestSession_Unknown(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	_, err := j.Session("missing")
	assert.True(t, errors.Is(err, ErrUnknownSession))

	_, err = j.Summary("missing")
	assert.True(t, errors.Is(err, ErrUnknownSession))
}

func TestRecordEventAndSummary(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	log, err := j.StartSession("test", nil)
	require.NoError(t, err)

	require.NoError(t, log.Record(startOutcome(3)))
	require.NoError(t, log.Record(block.Outcome{Frame: 4})) // no event, ignored
	require.NoError(t, log.Record(block.Outcome{Frame: 40, Event: block.EventStop, Smoothed: true}))
	require.NoError(t, log.Record(block.Outcome{Frame: 41, Event: block.EventStop, Forced: true, Skip: block.SkipLoadout}))

	events, err := j.Events(log.ID())
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, uint64(3), events[0].Frame)
	assert.Equal(t, block.EventStart, events[0].Event)
	assert.Equal(t, "unarmed", events[0].MainRule)
	assert.Equal(t, "start", events[0].MainDecision)
	assert.Equal(t, 0.5, events[0].MainSpeed)
	assert.Equal(t, 0.4, events[0].OffSpeed)
	assert.False(t, events[0].Forced)

	assert.True(t, events[1].Smoothed)
	assert.True(t, events[2].Forced)
	assert.Contains(t, events[2].String(), "blockStop (forced)")

	sum, err := j.Summary(log.ID())
	require.NoError(t, err)
	assert.Equal(t, Summary{SessionID: log.ID(), Starts: 1, Stops: 2, Forced: 1, FirstFrame: 3, LastFrame: 41}, sum)
}

func TestSummary_EmptySession(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	log, err := j.StartSession("empty", nil)
	require.NoError(t, err)

	sum, err := j.Summary(log.ID())
	require.NoError(t, err)
	assert.Equal(t, Summary{SessionID: log.ID()}, sum)
}

// A session records exactly the events its sink saw.
func TestSessionLog_AsRecorder(t *testing.T) {
	t.Parallel()

	j := setupTestJournal(t)
	log, err := j.StartSession("rig", nil)
	require.NoError(t, err)

	rig := testutil.NewRig()
	rig.FollowEvents = true
	rig.UnarmedGuard(0.7, 0.1)
	s := block.NewSession(nil)
	s.SetRecorder(log)

	for i := 0; i < 5; i++ {
		s.Update(rig, rig)
	}
	rig.SetSpeeds(3)
	s.Update(rig, rig)

	events, err := j.Events(log.ID())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, block.EventStart, events[0].Event)
	assert.Equal(t, uint64(0), events[0].Frame)
	assert.Equal(t, block.EventStop, events[1].Event)
	assert.Equal(t, uint64(5), events[1].Frame)
	assert.Equal(t, rig.Starts, 1)
	assert.Equal(t, rig.Stops, 1)
}
