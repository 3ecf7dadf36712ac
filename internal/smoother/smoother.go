// Package smoother debounces the host's per-frame "is blocking" animation
// flag with a majority vote over a short window.
package smoother

// ModeFilter keeps the last M raw flags and reports the majority value.
// Ties resolve to true.
type ModeFilter struct {
	buf   []bool
	head  int
	count int
}

// NewModeFilter creates an empty filter over m samples. m must be at least 1;
// an odd m avoids ties once the window is full.
func NewModeFilter(m int) *ModeFilter {
	if m < 1 {
		panic("smoother: window size must be at least 1")
	}
	return &ModeFilter{buf: make([]bool, m)}
}

// Size returns the window length.
func (f *ModeFilter) Size() int { return len(f.buf) }

// Observe pushes a raw flag, dropping the oldest once the window is full,
// and returns the smoothed flag.
func (f *ModeFilter) Observe(raw bool) bool {
	f.buf[f.head] = raw
	f.head = (f.head + 1) % len(f.buf)
	if f.count < len(f.buf) {
		f.count++
	}
	return f.Smoothed()
}

// Smoothed returns true when true flags are at least as common as false
// ones among the samples seen so far. An empty filter reports false.
func (f *ModeFilter) Smoothed() bool {
	if f.count == 0 {
		return false
	}
	trues := 0
	for i := 0; i < f.count; i++ {
		// Walk back from the newest sample so a partial window only
		// counts slots that were written.
		idx := (f.head - 1 - i + len(f.buf)) % len(f.buf)
		if f.buf[idx] {
			trues++
		}
	}
	return trues >= f.count-trues
}

// Reset empties the filter.
func (f *ModeFilter) Reset() {
	clear(f.buf)
	f.head = 0
	f.count = 0
}
