package main

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/monitor"
	"github.com/banshee-data/blockvr/internal/monitoring"
	"github.com/banshee-data/blockvr/internal/replay"
	"github.com/banshee-data/blockvr/internal/timeutil"
)

// lineSink writes one animation event name per line.
type lineSink struct {
	w   *bufio.Writer
	err error
}

func (l *lineSink) emit(s string) {
	if l.err != nil {
		return
	}
	if _, err := l.w.WriteString(s + "\n"); err != nil {
		l.err = err
		return
	}
	l.err = l.w.Flush()
}

func (l *lineSink) BlockStart() { l.emit(block.EventStart.AnimationEvent()) }
func (l *lineSink) BlockStop()  { l.emit(block.EventStop.AnimationEvent()) }

// attachHost forwards the blocking velocity override to the output stream.
type attachHost struct {
	*replay.Frame
	out *lineSink
}

func (a attachHost) OverrideBlockingVelocity(v float64) {
	a.out.emit(fmt.Sprintf("fBlockingVelocity %g", v))
}

// stats counts what a bridge run did.
type stats struct {
	Frames    int
	Starts    int
	Stops     int
	Malformed int
}

// scanned is one input line: a decoded frame or the reason it was skipped.
type scanned struct {
	frame replay.Frame
	err   error
}

// scan feeds decoded frames and malformed-line errors to the returned
// channel, closing it at end of input. Err on sc is valid once it closes.
func scan(ctx context.Context, sc *replay.Scanner) <-chan scanned {
	ch := make(chan scanned)
	send := func(item scanned) bool {
		select {
		case ch <- item:
			return true
		case <-ctx.Done():
			return false
		}
	}
	sc.SkipInvalid(func(err error) { send(scanned{err: err}) })
	go func() {
		defer close(ch)
		for sc.Scan() {
			if !send(scanned{frame: sc.Frame()}) {
				return
			}
		}
	}()
	return ch
}

// bridge reads JSON Lines frames from in, runs each through s at the pacer's
// rate and writes fired animation events to out. Each outcome is also
// passed to tracker when it is non-nil. Lines that fail to decode are
// logged and skipped. It returns when in is exhausted, ctx is cancelled or
// a read or write fails; cancellation does not wait for in to become
// readable.
func bridge(ctx context.Context, in io.Reader, out io.Writer, s *block.Session, pacer *timeutil.Pacer, tracker *monitor.Tracker) (stats, error) {
	var st stats
	sink := &lineSink{w: bufio.NewWriter(out)}
	sc := replay.NewScanner(in)
	lines := scan(ctx, sc)

	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		var item scanned
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case next, ok := <-lines:
			if !ok {
				return st, sc.Err()
			}
			item = next
		}

		if item.err != nil {
			st.Malformed++
			monitoring.Logf("bridge: skipping %v", item.err)
			continue
		}

		frame := item.frame
		if st.Frames == 0 {
			s.Attach(attachHost{Frame: &frame, out: sink})
		}

		pacer.Wait()
		o := s.Update(&frame, sink)
		st.Frames++
		if tracker != nil {
			tracker.Observe(o)
		}
		switch o.Event {
		case block.EventStart:
			st.Starts++
		case block.EventStop:
			st.Stops++
		}
		if sink.err != nil {
			return st, fmt.Errorf("failed to write event: %w", sink.err)
		}
	}
}
