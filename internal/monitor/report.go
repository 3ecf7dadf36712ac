package monitor

import (
	"context"
	"time"

	"github.com/banshee-data/blockvr/internal/monitoring"
)

// StartReporting logs a one-line status every interval until ctx is done.
// The returned channel closes once the reporter has stopped.
func (t *Tracker) StartReporting(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := t.clock.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				st := t.Status()
				monitoring.Logf("status: %d frames (%d evaluated), %d starts, %d stops (%d forced), %d suppressed",
					st.Frames, st.Evaluated, st.Starts, st.Stops, st.Forced, st.Suppressed)
			}
		}
	}()
	return done
}
