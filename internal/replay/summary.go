package replay

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/banshee-data/blockvr/internal/block"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats describes one field's distribution for one hand.
type FieldStats struct {
	Hand  string // "main" or "off"
	Field Field
	N     int
	Mean  float64
	Std   float64
	Min   float64
	P50   float64
	P95   float64
	Max   float64
}

// Summary aggregates a replay.
type Summary struct {
	Frames     int
	Evaluated  int
	Starts     int
	Stops      int
	Forced     int
	Suppressed int
	Skips      map[block.SkipReason]int
	Fields     []FieldStats
}

// Summarize counts events and skips and computes per-hand feature
// statistics over the evaluated frames.
func Summarize(outcomes []block.Outcome) Summary {
	s := Summary{Frames: len(outcomes), Skips: map[block.SkipReason]int{}}
	for _, o := range outcomes {
		if o.Evaluated() {
			s.Evaluated++
		} else {
			s.Skips[o.Skip]++
		}
		switch o.Event {
		case block.EventStart:
			s.Starts++
		case block.EventStop:
			s.Stops++
		}
		if o.Forced {
			s.Forced++
		}
		if o.Suppressed != block.EventNone {
			s.Suppressed++
		}
	}

	for _, hand := range []struct {
		name string
		main bool
	}{{"main", true}, {"off", false}} {
		for _, f := range Fields {
			pts := Series(outcomes, f, hand.main)
			if len(pts) == 0 {
				continue
			}
			s.Fields = append(s.Fields, describe(hand.name, f, pts))
		}
	}
	return s
}

func describe(hand string, f Field, pts []Point) FieldStats {
	xs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.Value
	}
	sort.Float64s(xs)

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = 0
	}
	return FieldStats{
		Hand:  hand,
		Field: f,
		N:     len(xs),
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(xs),
		P50:   stat.Quantile(0.5, stat.Empirical, xs, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, xs, nil),
		Max:   floats.Max(xs),
	}
}

// Write prints the summary as an aligned table.
func (s Summary) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "frames\t%d\n", s.Frames)
	fmt.Fprintf(tw, "evaluated\t%d\n", s.Evaluated)
	for _, r := range []block.SkipReason{block.SkipActor, block.SkipLoadout, block.SkipPose, block.SkipFeatures} {
		if n := s.Skips[r]; n > 0 {
			fmt.Fprintf(tw, "skipped (%s)\t%d\n", r, n)
		}
	}
	fmt.Fprintf(tw, "blockStart\t%d\n", s.Starts)
	fmt.Fprintf(tw, "blockStop\t%d\t(%d forced)\n", s.Stops, s.Forced)
	fmt.Fprintf(tw, "suppressed\t%d\n", s.Suppressed)
	if len(s.Fields) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "hand\tfield\tn\tmean\tstd\tmin\tp50\tp95\tmax")
		for _, f := range s.Fields {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
				f.Hand, f.Field, f.N, f.Mean, f.Std, f.Min, f.P50, f.P95, f.Max)
		}
	}
	return tw.Flush()
}
