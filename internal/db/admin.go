package db

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/banshee-data/blockvr/internal/httputil"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/klauspost/compress/gzip"
	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"
)

// AttachAdminRoutes mounts the journal's debug pages under /debug/ on mux:
// a tailsql console, a session listing and an on-demand gzipped backup.
func (j *Journal) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+filepath.Base(j.path), j.DB, &tailsql.DBOptions{
		Label: "Block journal",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())

	debug.HandleFunc("sessions", "Journalled sessions with event counts", func(w http.ResponseWriter, r *http.Request) {
		rows, err := j.Sessions()
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		type entry struct {
			SessionRow
			Summary Summary `json:"summary"`
		}
		out := make([]entry, 0, len(rows))
		for _, row := range rows {
			sum, err := j.Summary(row.ID)
			if err != nil {
				httputil.InternalServerError(w, err.Error())
				return
			}
			out = append(out, entry{SessionRow: row, Summary: sum})
		}
		httputil.WriteJSONOK(w, out)
	})

	debug.Handle("backup", "Create and download a backup of the journal now", http.HandlerFunc(j.serveBackup))
	return nil
}

func (j *Journal) serveBackup(w http.ResponseWriter, r *http.Request) {
	dir, err := os.MkdirTemp("", "blockvr-backup-")
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup dir: %v", err), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			monitoring.Logf("Failed to remove backup dir: %v", err)
		}
	}()

	name := fmt.Sprintf("journal-backup-%d.db", j.clock.Now().Unix())
	backupPath := filepath.Join(dir, name)
	if _, err := j.DB.Exec("VACUUM INTO ?", backupPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		return
	}

	backupFile, err := os.Open(backupPath)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to open backup file: %v", err), http.StatusInternalServerError)
		return
	}
	defer backupFile.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Encoding", "gzip")

	gz := gzip.NewWriter(w)
	defer gz.Close()
	if _, err := io.Copy(gz, backupFile); err != nil {
		monitoring.Logf("Failed to stream backup: %v", err)
	}
}
