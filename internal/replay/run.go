// Package replay drives the block classifier from recorded tracking frames
// and renders what it saw.
//
// Recordings are JSON Lines, one FrameRecord per line. Run feeds them
// through a block.Session and returns the per-frame outcomes; Summarize,
// PlotTrace and WriteHTMLReport turn those outcomes into numbers, PNG
// traces and an HTML report for threshold tuning.
package replay

import (
	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/equipment"
	"github.com/banshee-data/blockvr/internal/features"
)

// Run feeds frames through s in order and returns one outcome per frame.
// sink may be nil.
func Run(s *block.Session, frames []Frame, sink block.Sink) []block.Outcome {
	if sink == nil {
		sink = discard{}
	}
	out := make([]block.Outcome, 0, len(frames))
	for i := range frames {
		out = append(out, s.Update(&frames[i], sink))
	}
	return out
}

type discard struct{}

func (discard) BlockStart() {}
func (discard) BlockStop()  {}

// EventCounter is a block.Sink that counts what it receives.
type EventCounter struct {
	Starts int
	Stops  int
}

func (c *EventCounter) BlockStart() { c.Starts++ }
func (c *EventCounter) BlockStop()  { c.Stops++ }

// Field names one entry of a features.Set.
type Field int

const (
	FieldSpeed Field = iota
	FieldForwardDotDown
	FieldForwardDotForward
	FieldForwardDotOutward
	FieldVerticalOffset
)

// Fields lists every Field in display order.
var Fields = []Field{FieldSpeed, FieldForwardDotDown, FieldForwardDotForward, FieldForwardDotOutward, FieldVerticalOffset}

func (f Field) String() string {
	switch f {
	case FieldSpeed:
		return "speed"
	case FieldForwardDotDown:
		return "forwardDotDown"
	case FieldForwardDotForward:
		return "forwardDotForward"
	case FieldForwardDotOutward:
		return "forwardDotOutward"
	case FieldVerticalOffset:
		return "verticalOffset"
	}
	return "unknown"
}

// Value reads the field from s.
func (f Field) Value(s features.Set) float64 {
	switch f {
	case FieldSpeed:
		return s.Speed
	case FieldForwardDotDown:
		return s.ForwardDotDown
	case FieldForwardDotForward:
		return s.ForwardDotForward
	case FieldForwardDotOutward:
		return s.ForwardDotOutward
	case FieldVerticalOffset:
		return s.VerticalOffset
	}
	return 0
}

// AppliesTo reports whether rule r fills the field.
func (f Field) AppliesTo(r equipment.Rule) bool {
	switch f {
	case FieldSpeed, FieldVerticalOffset:
		return r != equipment.RuleNone
	case FieldForwardDotDown, FieldForwardDotForward:
		return r == equipment.RuleWeapon || r == equipment.RuleShield || r == equipment.RuleSpell
	case FieldForwardDotOutward:
		return r == equipment.RuleUnarmed
	}
	return false
}

// Threshold is a labelled horizontal line drawn on a trace.
type Threshold struct {
	Label string
	Value float64
}

// Thresholds returns the enter and exit lines for field under rule r.
// Fields without a band under r return nil. A nil cfg means defaults.
func Thresholds(cfg *config.BlockConfig, f Field, r equipment.Rule) []Threshold {
	if cfg == nil {
		cfg = config.EmptyBlockConfig()
	}
	switch r {
	case equipment.RuleWeapon, equipment.RuleShield, equipment.RuleSpell:
		b := cfg.WeaponBand()
		switch f {
		case FieldSpeed:
			return []Threshold{{"enter", b.Enter.SpeedMax}, {"exit", b.Exit.SpeedMax}}
		case FieldForwardDotDown:
			return []Threshold{{"enter", b.Enter.DownMin}, {"exit", b.Exit.DownMin}}
		case FieldForwardDotForward:
			return []Threshold{{"enter", b.Enter.ForwardMax}, {"exit", b.Exit.ForwardMax}}
		case FieldVerticalOffset:
			return []Threshold{{"enter", b.Enter.VerticalMax}, {"exit", b.Exit.VerticalMax}}
		}
	case equipment.RuleUnarmed:
		b := cfg.UnarmedBand()
		switch f {
		case FieldSpeed:
			return []Threshold{{"enter", b.Enter.SpeedMax}, {"exit", b.Exit.SpeedMax}}
		case FieldForwardDotOutward:
			return []Threshold{{"enter", b.Enter.OutwardMin}, {"exit", b.Exit.OutwardMin}}
		case FieldVerticalOffset:
			return []Threshold{{"enter", b.Enter.VerticalMax}, {"exit", b.Exit.VerticalMax}}
		}
	}
	return nil
}

// Point is one sample of a per-hand series.
type Point struct {
	Frame uint64
	Value float64
}

// Series extracts field for one hand from the evaluated outcomes. main
// selects the main hand, otherwise the off hand.
func Series(outcomes []block.Outcome, f Field, main bool) []Point {
	var pts []Point
	for _, o := range outcomes {
		if !o.Evaluated() {
			continue
		}
		h := o.Off
		if main {
			h = o.Main
		}
		if !f.AppliesTo(h.Rule) {
			continue
		}
		pts = append(pts, Point{Frame: o.Frame, Value: f.Value(h.Features)})
	}
	return pts
}

// dominantRule returns the rule most often applied to the hand across the
// evaluated outcomes, or RuleNone.
func dominantRule(outcomes []block.Outcome, main bool) equipment.Rule {
	counts := map[equipment.Rule]int{}
	best, bestN := equipment.RuleNone, 0
	for _, o := range outcomes {
		if !o.Evaluated() {
			continue
		}
		r := o.Off.Rule
		if main {
			r = o.Main.Rule
		}
		counts[r]++
		if n := counts[r]; n > bestN || (n == bestN && r < best) {
			best, bestN = r, n
		}
	}
	return best
}
