package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"message": "hello"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello", decode(t, rec)["message"])
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		msg    string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad n") }, http.StatusBadRequest, "bad n"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "boom") }, http.StatusInternalServerError, "boom"},
		{"method", func(w http.ResponseWriter) { MethodNotAllowed(w, http.MethodGet) }, http.StatusMethodNotAllowed, "method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decode(t, rec)["error"])
		})
	}
}

func TestMethodNotAllowed_Allow(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	MethodNotAllowed(rec, http.MethodGet, http.MethodHead)
	assert.Equal(t, []string{"GET", "HEAD"}, rec.Header().Values("Allow"))
}

func TestIntParam(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/outcomes?n=25&bad=x&neg=-1", nil)

	n, err := IntParam(req, "n", 100)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	n, err = IntParam(req, "missing", 100)
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	for _, name := range []string{"bad", "neg"} {
		_, err = IntParam(req, name, 0)
		var pe *ParamError
		require.True(t, errors.As(err, &pe), name)
		assert.Equal(t, name, pe.Name)
	}
}
