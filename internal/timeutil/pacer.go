package timeutil

import "time"

// Pacer spaces calls to Wait at a fixed frame rate. Frames that arrive late
// do not accumulate debt: the schedule restarts from the late frame.
type Pacer struct {
	clock    Clock
	interval time.Duration
	next     time.Time
}

// NewPacer paces at rate frames per second. A rate of zero or less disables
// pacing and Wait returns immediately.
func NewPacer(clock Clock, rate float64) *Pacer {
	p := &Pacer{clock: clock}
	if rate > 0 {
		p.interval = time.Duration(float64(time.Second) / rate)
	}
	return p
}

// Interval returns the frame interval, or 0 when pacing is disabled.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Wait blocks until the next frame is due.
func (p *Pacer) Wait() {
	if p.interval == 0 {
		return
	}
	now := p.clock.Now()
	if p.next.IsZero() || !now.Before(p.next) {
		p.next = now.Add(p.interval)
		return
	}
	p.clock.Sleep(p.next.Sub(now))
	p.next = p.next.Add(p.interval)
}
