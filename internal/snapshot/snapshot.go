// Package snapshot exports a series as a static PNG with go-chart. Ticks follow the same
// rules as the svg chart: one x tick per year, nice y ticks with SI labels.
package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pranegit/yearly-chart/internal/chart"
)

var (
	lineColor = drawing.ColorFromHex("2b7be4")
	fillColor = drawing.ColorFromHex("d6ecff").WithAlpha(200)
)

type Options struct {
	Width    int
	Height   int
	Title    string
	XLabel   string
	YLabel   string
	YTicks   int
	Headroom float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 600
	}
	if o.YTicks <= 0 {
		o.YTicks = chart.DefaultYTicks
	}
	if o.Headroom <= 0 {
		o.Headroom = chart.DefaultHeadroom
	}
	if o.XLabel == "" {
		o.XLabel = "Year"
	}
	if o.YLabel == "" {
		o.YLabel = "Number of Projects"
	}
	return o
}

// Build lays out the go-chart value for series
func Build(series chart.Series, opts Options) (gochart.Chart, error) {
	if len(series) == 0 {
		return gochart.Chart{}, &chart.OpError{Op: "snapshot.build", Kind: chart.KindNoData, Err: chart.ErrNoData}
	}
	opts = opts.withDefaults()

	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	xTicks := make([]gochart.Tick, len(series))
	for i, p := range series {
		xs[i] = float64(p.Year)
		ys[i] = p.Value
		xTicks[i] = gochart.Tick{Value: float64(p.Year), Label: chart.FormatYear(p.Year)}
	}
	xr := &gochart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]}
	// go-chart cannot draw a zero-width domain: widen it and keep the year centred
	if len(series) == 1 {
		xr = &gochart.ContinuousRange{Min: xs[0] - 1, Max: xs[0] + 1}
		xs = []float64{xs[0] - 0.5, xs[0] + 0.5}
		ys = []float64{ys[0], ys[0]}
	}

	yd := chart.YScale(series, 1, opts.Headroom)
	var yTicks []gochart.Tick
	for _, v := range yd.Ticks(opts.YTicks) {
		yTicks = append(yTicks, gochart.Tick{Value: v, Label: chart.FormatSI(v)})
	}

	return gochart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  opts.XLabel,
			Range: xr,
			Ticks: xTicks,
		},
		YAxis: gochart.YAxis{
			Name:  opts.YLabel,
			Range: &gochart.ContinuousRange{Min: yd.D0, Max: yd.D1},
			Ticks: yTicks,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    opts.YLabel,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 3,
					FillColor:   fillColor,
				},
			},
		},
	}, nil
}

// Render writes the PNG for series to w
func Render(w io.Writer, series chart.Series, opts Options) error {
	ch, err := Build(series, opts)
	if err != nil {
		return err
	}
	if err := ch.Render(gochart.PNG, w); err != nil {
		return &chart.OpError{Op: "snapshot.render", Kind: chart.KindRender, Err: err}
	}
	return nil
}

// WriteFile renders to a buffer first so a failed render leaves no partial file
func WriteFile(path string, series chart.Series, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, series, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return nil
}
