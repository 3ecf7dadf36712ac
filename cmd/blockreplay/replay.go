package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/db"
	"github.com/banshee-data/blockvr/internal/fsutil"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/replay"
	"github.com/banshee-data/blockvr/internal/security"
)

type options struct {
	config  string
	frames  string
	db      string
	plotDir string
	html    string
}

// validate checks the flag combination and output locations before any
// work is done.
func (o options) validate() error {
	if o.frames == "" {
		return errors.New("-frames is required")
	}
	if o.plotDir != "" {
		if err := security.ValidateOutputPath(o.plotDir); err != nil {
			return fmt.Errorf("-plot: %w", err)
		}
	}
	if o.html != "" {
		if err := security.ValidateOutputPath(o.html, ".html", ".htm"); err != nil {
			return fmt.Errorf("-html: %w", err)
		}
	}
	if o.db != "" {
		if err := security.ValidateOutputPath(o.db, ".db", ".sqlite", ".sqlite3"); err != nil {
			return fmt.Errorf("-db: %w", err)
		}
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return security.SanitizeFilename(strings.TrimSuffix(base, filepath.Ext(base)))
}

// replayFile loads the recording, runs it through a fresh session and
// writes the summary to stdout plus whichever outputs were requested.
func replayFile(fsys fsutil.FileSystem, o options, stdout io.Writer) error {
	if err := o.validate(); err != nil {
		return err
	}

	cfg := config.LoadOrDefault(fsys, o.config)
	frames, err := replay.Load(fsys, o.frames)
	if err != nil {
		return err
	}
	monitoring.Logf("loaded %d frames from %s", len(frames), o.frames)

	s := block.NewSession(cfg)
	if o.db != "" {
		journal, err := db.Open(o.db)
		if err != nil {
			return err
		}
		defer journal.Close()

		log, err := journal.StartSession("replay:"+filepath.Base(o.frames), cfg)
		if err != nil {
			return err
		}
		s.SetRecorder(log)
		monitoring.Logf("journalling to %s as session %s", o.db, log.ID())
	}

	var sink replay.EventCounter
	outcomes := replay.Run(s, frames, &sink)

	if err := replay.Summarize(outcomes).Write(stdout); err != nil {
		return err
	}

	if o.plotDir != "" {
		written, err := replay.PlotAll(fsys, o.plotDir, stem(o.frames), outcomes, cfg)
		if err != nil {
			return err
		}
		for _, p := range written {
			monitoring.Logf("wrote %s", p)
		}
	}
	if o.html != "" {
		title := fmt.Sprintf("Block replay: %s", filepath.Base(o.frames))
		if err := replay.WriteHTMLReport(fsys, o.html, title, outcomes, cfg); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", o.html)
	}
	return nil
}

// listSessions prints every journalled session with its event counts.
func listSessions(path string, stdout io.Writer) error {
	if path == "" {
		return errors.New("-sessions needs -db")
	}
	journal, err := db.Open(path)
	if err != nil {
		return err
	}
	defer journal.Close()

	sessions, err := journal.Sessions()
	if err != nil {
		return err
	}
	for _, row := range sessions {
		sum, err := journal.Summary(row.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s  %s  %-30s starts=%d stops=%d forced=%d\n",
			row.ID, row.StartedAt.Format("2006-01-02 15:04:05"), row.Source, sum.Starts, sum.Stops, sum.Forced)
	}
	return nil
}
