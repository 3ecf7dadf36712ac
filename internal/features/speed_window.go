package features

// SpeedWindow keeps the last N raw speed samples for one hand and reports
// the maximum, damping single-frame velocity dips.
type SpeedWindow struct {
	buf  []float64
	head int
}

// NewSpeedWindow creates a zero-filled window of n samples. n must be at least 1.
func NewSpeedWindow(n int) *SpeedWindow {
	if n < 1 {
		panic("features: speed window size must be at least 1")
	}
	return &SpeedWindow{buf: make([]float64, n)}
}

// Len returns the window size.
func (w *SpeedWindow) Len() int { return len(w.buf) }

// Push records a speed sample, overwriting the oldest, and returns the max
// over the window including the new sample.
func (w *SpeedWindow) Push(speed float64) float64 {
	w.buf[w.head] = speed
	w.head = (w.head + 1) % len(w.buf)
	return w.Max()
}

// MaxWith returns the max the window would report after Push(speed),
// leaving the window untouched.
func (w *SpeedWindow) MaxWith(speed float64) float64 {
	oldest := w.buf[w.head]
	w.buf[w.head] = speed
	m := w.Max()
	w.buf[w.head] = oldest
	return m
}

// Max returns the largest sample currently in the window.
func (w *SpeedWindow) Max() float64 {
	m := w.buf[0]
	for _, v := range w.buf[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Reset zeroes the window.
func (w *SpeedWindow) Reset() {
	clear(w.buf)
	w.head = 0
}
