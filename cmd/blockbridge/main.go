// Command blockbridge connects a host process to the block classifier over
// pipes: it reads one JSON frame per line on stdin and writes blockStart or
// blockStop on stdout whenever a frame fires. With -listen it also serves
// live status and the journal's debug pages over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/db"
	"github.com/banshee-data/blockvr/internal/fsutil"
	"github.com/banshee-data/blockvr/internal/monitor"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/security"
	"github.com/banshee-data/blockvr/internal/timeutil"
	"github.com/banshee-data/blockvr/internal/version"
)

var (
	configFile  = flag.String("config", "", "Block tuning config (.json, .hujson, .yaml)")
	framesFile  = flag.String("frames", "", "Read frames from this file instead of stdin")
	dbPath      = flag.String("db", "", "Journal fired events to this sqlite file")
	listen      = flag.String("listen", "", "Serve live status and debug pages on this address (e.g. localhost:8090)")
	statusEvery = flag.Duration("status-every", 0, "Log a status line at this interval (0 = never)")
	rate        = flag.Float64("rate", 0, "Pace frames at this many per second (0 = as fast as they arrive)")
	verbose     = flag.Bool("v", false, "Log per-frame diagnostics")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("blockbridge"))
		return
	}
	// stdout carries events; diagnostics go to stderr.
	log.SetOutput(os.Stderr)
	monitoring.SetVerbose(*verbose)

	fsys := fsutil.OSFileSystem{}
	cfg := config.LoadOrDefault(fsys, *configFile)
	s := block.NewSession(cfg)

	var in io.Reader = os.Stdin
	source := "bridge:stdin"
	if *framesFile != "" {
		f, err := fsys.Open(*framesFile)
		if err != nil {
			log.Fatalf("failed to open frames: %v", err)
		}
		defer f.Close()
		in = f
		source = "bridge:" + *framesFile
	}

	var journal *db.Journal
	if *dbPath != "" {
		if err := security.ValidateOutputPath(*dbPath, ".db", ".sqlite", ".sqlite3"); err != nil {
			log.Fatalf("-db: %v", err)
		}
		var err error
		journal, err = db.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open journal: %v", err)
		}
		defer journal.Close()
		sessionLog, err := journal.StartSession(source, cfg)
		if err != nil {
			log.Fatalf("failed to start session: %v", err)
		}
		s.SetRecorder(sessionLog)
		log.Printf("journalling session %s to %s", sessionLog.ID(), *dbPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		wg      sync.WaitGroup
		tracker *monitor.Tracker
	)
	serveCtx, stopServe := context.WithCancel(ctx)
	if *listen != "" || *statusEvery > 0 {
		tracker = monitor.NewTracker(monitor.DefaultCapacity, nil)
	}
	if *statusEvery > 0 {
		reported := tracker.StartReporting(serveCtx, *statusEvery)
		defer func() { <-reported }()
	}
	if *listen != "" {
		h, err := debugHandler(tracker, journal, cfg)
		if err != nil {
			log.Fatalf("failed to set up debug routes: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveDebug(serveCtx, *listen, h)
		}()
	}

	pacer := timeutil.NewPacer(timeutil.RealClock{}, *rate)
	st, err := bridge(ctx, in, os.Stdout, s, pacer, tracker)
	stopServe()
	wg.Wait()
	log.Printf("bridge finished: %d frames, %d starts, %d stops, %d malformed", st.Frames, st.Starts, st.Stops, st.Malformed)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("bridge: %v", err)
		os.Exit(1)
	}
}
