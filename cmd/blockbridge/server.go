package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/db"
	"github.com/banshee-data/blockvr/internal/monitor"
	"github.com/banshee-data/blockvr/internal/monitoring"
)

// debugHandler mounts the tracker routes and, when a journal is open, its
// admin pages under /debug/.
func debugHandler(tracker *monitor.Tracker, journal *db.Journal, cfg *config.BlockConfig) (http.Handler, error) {
	mux := http.NewServeMux()
	tracker.AttachRoutes(mux, cfg)
	if journal != nil {
		if err := journal.AttachAdminRoutes(mux); err != nil {
			return nil, err
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		monitoring.Debugf("got request %q", r.URL.Path)
		mux.ServeHTTP(w, r)
	}), nil
}

// serveDebug runs the debug server on addr until ctx is done.
func serveDebug(ctx context.Context, addr string, h http.Handler) {
	server := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()
	log.Printf("debug server listening on %s", addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
	log.Printf("HTTP server routine stopped")
}
