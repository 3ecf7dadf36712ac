package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/blockvr/internal/db"
	"github.com/banshee-data/blockvr/internal/fsutil"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/pose"
	"github.com/banshee-data/blockvr/internal/replay"
	"github.com/banshee-data/blockvr/internal/security"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	monitoring.SetLogger(nil)
}

func device(fwd, pos mgl64.Vec3, speed float64) replay.DeviceRecord {
	basis := [9]float64(pose.LookAt(fwd, mgl64.Vec3{0, 0, 1}))
	return replay.DeviceRecord{Pos: [3]float64(pos), Basis: &basis, Valid: true, Speed: speed}
}

// writeRecording writes ten still unarmed guard frames followed by ten
// fast, blocking frames.
func writeRecording(t *testing.T, dir string) string {
	t.Helper()
	along := math.Sqrt(1 - 0.7*0.7)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := 0; i < 20; i++ {
		speed := 0.5
		if i >= 10 {
			speed = 2
		}
		rec := replay.FrameRecord{
			Time:     float64(i) / 90,
			Head:     replay.DeviceRecord{Pos: [3]float64{0, 0, 1.6}, Valid: true},
			Right:    device(mgl64.Vec3{0.7, along, 0}, mgl64.Vec3{0.25, 0.3, 1.5}, speed),
			Left:     device(mgl64.Vec3{-0.7, along, 0}, mgl64.Vec3{-0.25, 0.3, 1.5}, speed),
			Blocking: i >= 10,
		}
		require.NoError(t, enc.Encode(rec))
	}
	path := filepath.Join(dir, "guard.jsonl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestReplayFile(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		frames:  writeRecording(t, dir),
		db:      filepath.Join(dir, "journal.db"),
		plotDir: filepath.Join(dir, "plots"),
		html:    filepath.Join(dir, "report.html"),
	}

	var stdout bytes.Buffer
	require.NoError(t, replayFile(fsutil.OSFileSystem{}, opts, &stdout))
	assert.Regexp(t, `evaluated\s+20\n`, stdout.String())
	assert.Contains(t, stdout.String(), "blockStart")

	assert.FileExists(t, opts.html)
	assert.FileExists(t, filepath.Join(opts.plotDir, "guard_speed.png"))
	assert.FileExists(t, filepath.Join(opts.plotDir, "guard_forwardDotOutward.png"))
	assert.NoFileExists(t, filepath.Join(opts.plotDir, "guard_forwardDotDown.png"))

	journal, err := db.Open(opts.db)
	require.NoError(t, err)
	defer journal.Close()
	sessions, err := journal.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "replay:guard.jsonl", sessions[0].Source)
	sum, err := journal.Summary(sessions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Starts)
	assert.Equal(t, 1, sum.Stops)

	var list bytes.Buffer
	require.NoError(t, listSessions(opts.db, &list))
	assert.Contains(t, list.String(), "replay:guard.jsonl")
	assert.Contains(t, list.String(), "starts=1 stops=1 forced=0")
}

func TestReplayFile_MemoryFS(t *testing.T) {
	t.Parallel()

	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile("rec.jsonl", []byte(`{"head":{"pos":[0,0,1.6],"valid":true}}`+"\n"), 0o644))
	require.NoError(t, fsys.WriteFile("tuning.yaml", []byte("BlockCooldownFrames: 5\n"), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, replayFile(fsys, options{frames: "rec.jsonl", config: "tuning.yaml"}, &stdout))
	assert.Regexp(t, `frames\s+1\n`, stdout.String())
	assert.Contains(t, stdout.String(), "skipped (pose)")
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		opts options
		want error
	}{
		{"frames required", options{}, nil},
		{"html extension", options{frames: "f", html: filepath.Join(dir, "report.txt")}, security.ErrBadExtension},
		{"db extension", options{frames: "f", db: filepath.Join(dir, "journal.csv")}, security.ErrBadExtension},
		{"outside allowed dirs", options{frames: "f", html: "/etc/report.html"}, security.ErrOutsideAllowedDirs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			require.Error(t, err)
			if tt.want != nil {
				assert.True(t, errors.Is(err, tt.want), "got %v", err)
			}
		})
	}

	assert.NoError(t, options{frames: "f", html: filepath.Join(dir, "r.html"), plotDir: dir}.validate())
}

func TestListSessions_NeedsDB(t *testing.T) {
	t.Parallel()
	assert.Error(t, listSessions("", &bytes.Buffer{}))
}

func TestStem(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "guard", stem("/recordings/guard.jsonl"))
	assert.Equal(t, "two_hand_swing", stem("two hand swing.jsonl"))
}
