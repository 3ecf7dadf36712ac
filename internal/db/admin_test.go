package db

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/banshee-data/blockvr/internal/timeutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localHostRequest makes a request that passes tsweb's loopback check.
func localHostRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "127.0.0.1:12345"
	return req
}

func adminMux(t *testing.T, j *Journal) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	require.NoError(t, j.AttachAdminRoutes(mux))
	return mux
}

func TestAttachAdminRoutes_Backup(t *testing.T) {
	j := setupTestJournal(t)
	j.SetClock(timeutil.NewMockClock(time.Unix(1700000000, 0)))
	log, err := j.StartSession("test", nil)
	require.NoError(t, err)
	require.NoError(t, log.Record(startOutcome(3)))

	rec := httptest.NewRecorder()
	adminMux(t, j).ServeHTTP(rec, localHostRequest(http.MethodGet, "/debug/backup"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "journal-backup-1700000000.db")

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("SQLite format 3\x00")))
}

func TestAttachAdminRoutes_Sessions(t *testing.T) {
	j := setupTestJournal(t)
	log, err := j.StartSession("replay:guard.jsonl", nil)
	require.NoError(t, err)
	require.NoError(t, log.Record(startOutcome(7)))

	rec := httptest.NewRecorder()
	adminMux(t, j).ServeHTTP(rec, localHostRequest(http.MethodGet, "/debug/sessions"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got []struct {
		ID      string
		Source  string
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, log.ID(), got[0].ID)
	assert.Equal(t, "replay:guard.jsonl", got[0].Source)
	assert.Equal(t, 1, got[0].Summary.Starts)
}

func TestAttachAdminRoutes_RemoteDenied(t *testing.T) {
	j := setupTestJournal(t)

	req := httptest.NewRequest(http.MethodGet, "/debug/backup", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	rec := httptest.NewRecorder()
	adminMux(t, j).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJournal_Path(t *testing.T) {
	j := setupTestJournal(t)
	assert.Contains(t, j.Path(), "journal.db")
}
