package replay

import (
	"bytes"
	"fmt"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/fsutil"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func scatterData(pts []Point) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(pts))
	for _, p := range pts {
		data = append(data, opts.ScatterData{Value: []interface{}{p.Frame, p.Value}})
	}
	return data
}

// fieldChart plots one field for both hands, with the main hand's
// thresholds as mark lines. It returns nil when neither hand has data.
func fieldChart(outcomes []block.Outcome, f Field, cfg *config.BlockConfig) *charts.Scatter {
	mainPts := Series(outcomes, f, true)
	offPts := Series(outcomes, f, false)
	if len(mainPts) == 0 && len(offPts) == 0 {
		return nil
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: f.String(), Subtitle: fmt.Sprintf("main=%d off=%d samples", len(mainPts), len(offPts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: f.String(), NameLocation: "middle", NameGap: 40}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	var marks []opts.MarkLineNameYAxisItem
	for _, th := range Thresholds(cfg, f, dominantRule(outcomes, true)) {
		marks = append(marks, opts.MarkLineNameYAxisItem{Name: th.Label, YAxis: th.Value})
	}
	scatter.AddSeries("main", scatterData(mainPts),
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
		charts.WithMarkLineNameYAxisItemOpts(marks...),
	)
	if len(offPts) > 0 {
		scatter.AddSeries("off", scatterData(offPts), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}
	return scatter
}

func eventChart(sum Summary) *charts.Bar {
	x := []string{"blockStart", "blockStop", "forced", "suppressed"}
	y := []opts.BarData{
		{Value: sum.Starts},
		{Value: sum.Stops},
		{Value: sum.Forced},
		{Value: sum.Suppressed},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "320px"}),
		charts.WithTitleOpts(opts.Title{Title: "Events", Subtitle: fmt.Sprintf("frames=%d evaluated=%d", sum.Frames, sum.Evaluated)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("events", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

// RenderHTMLReport renders an event count chart followed by one chart per
// feature field that has data.
func RenderHTMLReport(title string, outcomes []block.Outcome, cfg *config.BlockConfig) ([]byte, error) {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(eventChart(Summarize(outcomes)))
	for _, f := range Fields {
		if c := fieldChart(outcomes, f, cfg); c != nil {
			page.AddCharts(c)
		}
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTMLReport renders the report and writes it to path.
func WriteHTMLReport(fsys fsutil.FileSystem, path, title string, outcomes []block.Outcome, cfg *config.BlockConfig) error {
	html, err := RenderHTMLReport(title, outcomes, cfg)
	if err != nil {
		return err
	}
	return fsys.WriteFile(path, html, 0o644)
}
