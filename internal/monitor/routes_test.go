package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/equipment"
	"github.com/banshee-data/blockvr/internal/features"
	"github.com/banshee-data/blockvr/internal/hysteresis"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/pose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	monitoring.SetLogger(nil)
}

func newServer(t *testing.T) (*Tracker, *httptest.Server) {
	t.Helper()
	tr := NewTracker(16, nil)
	mux := http.NewServeMux()
	tr.AttachRoutes(mux, nil)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return tr, srv
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestRoutes_Health(t *testing.T) {
	t.Parallel()
	_, srv := newServer(t)

	var body map[string]string
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRoutes_Status(t *testing.T) {
	t.Parallel()
	tr, srv := newServer(t)
	tr.Observe(block.Outcome{Event: block.EventStart})

	var st Status
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/status", &st))
	assert.Equal(t, 1, st.Frames)
	assert.Equal(t, 1, st.Starts)
	assert.True(t, st.Blocking)

	resp, err := http.Post(srv.URL+"/api/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRoutes_Outcomes(t *testing.T) {
	t.Parallel()
	tr, srv := newServer(t)

	tr.Observe(block.Outcome{Frame: 0, Skip: block.SkipActor})
	tr.Observe(block.Outcome{
		Frame: 1,
		Event: block.EventStart,
		Main: block.Hand{
			Controller: pose.Right,
			Rule:       equipment.RuleUnarmed,
			Features:   features.Set{Speed: 0.4, ForwardDotOutward: 0.7},
			Decision:   hysteresis.ShouldStart,
		},
	})

	var views []outcomeView
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/outcomes", &views))
	require.Len(t, views, 2)

	assert.Equal(t, "actor", views[0].Skip)
	assert.Nil(t, views[0].Main)

	assert.Equal(t, "start", views[1].Event)
	require.NotNil(t, views[1].Main)
	assert.Equal(t, "right", views[1].Main.Controller)
	assert.Equal(t, "unarmed", views[1].Main.Rule)
	assert.Equal(t, "start", views[1].Main.Decision)
	assert.InDelta(t, 0.7, views[1].Main.Outward, 1e-12)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/outcomes?n=1", &views))
	require.Len(t, views, 1)
	assert.Equal(t, uint64(1), views[0].Frame)

	var errBody map[string]string
	assert.Equal(t, http.StatusBadRequest, getJSON(t, srv.URL+"/api/outcomes?n=abc", &errBody))
	assert.Contains(t, errBody["error"], "invalid n")
}

func TestRoutes_Report(t *testing.T) {
	t.Parallel()
	tr, srv := newServer(t)
	tr.Observe(block.Outcome{Frame: 0, Main: block.Hand{Rule: equipment.RuleWeapon, Features: features.Set{Speed: 1}}})

	resp, err := http.Get(srv.URL + "/report")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}
