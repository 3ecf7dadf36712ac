package replay

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/fsutil"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a trace has nothing to draw.
var ErrNoData = errors.New("no evaluated frames for field")

var (
	mainColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	offColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	enterColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	exitColor  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

func toXYs(pts []Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X = float64(p.Frame)
		xys[i].Y = p.Value
	}
	return xys
}

// eventMarks places one glyph per fired event of kind e on the main hand's
// series. Events on frames without a main-hand sample are placed at y=0.
func eventMarks(outcomes []block.Outcome, pts []Point, e block.Event) plotter.XYs {
	at := make(map[uint64]float64, len(pts))
	for _, p := range pts {
		at[p.Frame] = p.Value
	}
	var xys plotter.XYs
	for _, o := range outcomes {
		if o.Event != e {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(o.Frame), Y: at[o.Frame]})
	}
	return xys
}

// NewTracePlot draws field for both hands against frame number, with the
// main hand's enter and exit thresholds and markers where blockStart and
// blockStop fired.
func NewTracePlot(outcomes []block.Outcome, f Field, cfg *config.BlockConfig) (*plot.Plot, error) {
	mainPts := Series(outcomes, f, true)
	offPts := Series(outcomes, f, false)
	if len(mainPts) == 0 && len(offPts) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, f)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Block trace: %s", f)
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = f.String()

	for _, s := range []struct {
		name string
		pts  []Point
		c    color.Color
	}{{"main", mainPts, mainColor}, {"off", offPts, offColor}} {
		if len(s.pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(toXYs(s.pts))
		if err != nil {
			return nil, fmt.Errorf("failed to build %s line: %w", s.name, err)
		}
		line.Color = s.c
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	for _, th := range Thresholds(cfg, f, dominantRule(outcomes, true)) {
		v := th.Value
		fn := plotter.NewFunction(func(float64) float64 { return v })
		fn.Color = exitColor
		if th.Label == "enter" {
			fn.Color = enterColor
		}
		fn.Width = vg.Points(0.75)
		fn.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(fn)
		p.Legend.Add(th.Label, fn)
	}

	for _, m := range []struct {
		e     block.Event
		shape draw.GlyphDrawer
		c     color.Color
	}{{block.EventStart, draw.TriangleGlyph{}, enterColor}, {block.EventStop, draw.CrossGlyph{}, exitColor}} {
		xys := eventMarks(outcomes, mainPts, m.e)
		if len(xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s markers: %w", m.e, err)
		}
		sc.GlyphStyle.Shape = m.shape
		sc.GlyphStyle.Color = m.c
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(m.e.AnimationEvent(), sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// PlotTrace renders one field's trace as a PNG at path.
func PlotTrace(fsys fsutil.FileSystem, path string, outcomes []block.Outcome, f Field, cfg *config.BlockConfig) error {
	p, err := NewTracePlot(outcomes, f, cfg)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render %s plot: %w", f, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}

// PlotAll writes <dir>/<stem>_<field>.png for every field that has data
// and returns the paths written.
func PlotAll(fsys fsutil.FileSystem, dir, stem string, outcomes []block.Outcome, cfg *config.BlockConfig) ([]string, error) {
	var written []string
	for _, f := range Fields {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stem, f))
		err := PlotTrace(fsys, path, outcomes, f, cfg)
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
