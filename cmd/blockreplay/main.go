// Command blockreplay runs recorded tracking frames through the block
// classifier and reports what fired, for tuning thresholds offline.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/blockvr/internal/fsutil"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/version"
)

var (
	configFile  = flag.String("config", "", "Block tuning config (.json, .hujson, .yaml)")
	framesFile  = flag.String("frames", "", "Recorded frames (JSON Lines)")
	dbPath      = flag.String("db", "", "Journal fired events to this sqlite file")
	plotDir     = flag.String("plot", "", "Write PNG feature traces to this directory")
	htmlFile    = flag.String("html", "", "Write an HTML report to this file")
	listJournal = flag.Bool("sessions", false, "List the sessions journalled in -db and exit")
	verbose     = flag.Bool("v", false, "Log per-frame diagnostics")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("blockreplay"))
		return
	}
	monitoring.SetVerbose(*verbose)

	opts := options{
		config:  *configFile,
		frames:  *framesFile,
		db:      *dbPath,
		plotDir: *plotDir,
		html:    *htmlFile,
	}

	var err error
	if *listJournal {
		err = listSessions(opts.db, os.Stdout)
	} else {
		err = replayFile(fsutil.OSFileSystem{}, opts, os.Stdout)
	}
	if err != nil {
		log.Fatalf("blockreplay: %v", err)
	}
}
