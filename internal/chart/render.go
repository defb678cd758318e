package chart

import (
	"fmt"
	"strconv"
)

// DefaultYTicks is the approximate tick count of the value axis.
const DefaultYTicks = 6

// sceneCSS carries the entrance transitions. Both are cosmetic; the overlay sits above the
// paths, so hover works while they play.
const sceneCSS = `.yc-area{opacity:0;animation:yc-fade .9s ease .15s forwards}` +
	`.yc-line{stroke-dasharray:1 1;stroke-dashoffset:1;animation:yc-draw 1.2s cubic-bezier(.215,.61,.355,1) forwards}` +
	`.yc-axis text{font-size:12px;fill:#344054}` +
	`.yc-axis path,.yc-axis line{stroke:#98a2b3}` +
	`.axis-label{font-size:13px;fill:#475467}` +
	`@keyframes yc-fade{to{opacity:1}}` +
	`@keyframes yc-draw{to{stroke-dashoffset:0}}`

// RenderOptions tunes the look of a scene. Zero values fall back to defaults.
type RenderOptions struct {
	CurveAlpha float64
	Headroom   float64
	YTicks     int
	XLabel     string
	YLabel     string
	// IDSuffix keeps defs/focus ids unique when several charts share a page.
	IDSuffix string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.CurveAlpha <= 0 || o.CurveAlpha > 1 {
		o.CurveAlpha = DefaultCurveAlpha
	}
	if o.Headroom <= 0 {
		o.Headroom = DefaultHeadroom
	}
	if o.YTicks <= 0 {
		o.YTicks = DefaultYTicks
	}
	if o.XLabel == "" {
		o.XLabel = "Year"
	}
	if o.YLabel == "" {
		o.YLabel = "Number of Projects"
	}
	return o
}

// ScenePoint is a series point with its position in plot coordinates.
type ScenePoint struct {
	Point
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// Scene is a fully built chart, ready to be committed in one step.
type Scene struct {
	Root    *Node
	Layout  Layout
	Series  Series
	X, Y    Linear
	Points  []ScenePoint
	Caption string
	XLabel  string
	YLabel  string

	FocusID   string
	OverlayID string
	focus     Focus
}

// Markup returns the svg document.
func (s *Scene) Markup() string {
	if s == nil || s.Root == nil {
		return ""
	}
	return s.Root.Markup()
}

// Renderer turns a series into a Scene.
type Renderer struct {
	Options RenderOptions
}

// Build lays out axes, area, line, focus marker and pointer overlay for series.
func (r Renderer) Build(series Series, layout Layout) (*Scene, error) {
	opts := r.Options.withDefaults()
	if len(series) == 0 {
		return nil, &OpError{Op: "chart.render", Kind: KindNoData, Err: ErrNoData}
	}
	pw, ph := layout.PlotWidth(), layout.PlotHeight()
	if pw <= 0 || ph <= 0 {
		return nil, &OpError{Op: "chart.render", Kind: KindRender,
			Err: fmt.Errorf("plot area %gx%g is empty (svg %gx%g)", pw, ph, layout.Width, layout.Height)}
	}

	xs := XScale(series, pw)
	ys := YScale(series, ph, opts.Headroom)

	pts := make([]Vec, len(series))
	scenePts := make([]ScenePoint, len(series))
	for i, p := range series {
		pts[i] = Vec{X: xs.Map(float64(p.Year)), Y: ys.Map(p.Value)}
		scenePts[i] = ScenePoint{Point: p, X: pts[i].X, Y: pts[i].Y, Label: FocusLabel(p)}
	}

	sfx := opts.IDSuffix
	gradID := "areaGradient" + sfx
	glowID := "glow" + sfx
	sc := &Scene{
		Layout:    layout,
		Series:    series,
		X:         xs,
		Y:         ys,
		Points:    scenePts,
		Caption:   Caption(series),
		XLabel:    opts.XLabel,
		YLabel:    opts.YLabel,
		FocusID:   "focus" + sfx,
		OverlayID: "overlay" + sfx,
	}

	w, h := num(layout.Width), num(layout.Height)
	svg := El("svg",
		"xmlns", "http://www.w3.org/2000/svg",
		"class", "year-chart",
		"width", w,
		"height", h,
		"viewBox", "0 0 "+w+" "+h,
		"preserveAspectRatio", "xMidYMid meet",
	)
	svg.Append(El("style").WithText(sceneCSS))
	svg.Append(defs(glowID, gradID))

	g := El("g", "transform", translate(layout.Margin.Left, layout.Margin.Top))
	g.Append(
		El("path", "class", "yc-area", "d", AreaPath(pts, ys.Map(0), opts.CurveAlpha), "fill", "url(#"+gradID+")"),
		El("path", "class", "yc-line line-glow", "d", LinePath(pts, opts.CurveAlpha), "fill", "none",
			"stroke", "#2b7be4", "stroke-width", "3", "stroke-linejoin", "round", "stroke-linecap", "round",
			"pathLength", "1", "filter", "url(#"+glowID+")"),
		El("path", "class", "yc-shadow", "d", LinePath(pts, opts.CurveAlpha), "fill", "none",
			"stroke", "#bfe3ff", "stroke-width", "8", "opacity", "0.08",
			"stroke-linejoin", "round", "stroke-linecap", "round"),
		xAxis(series, xs, ph),
		yAxis(ys, opts.YTicks),
	)

	// focus stays hidden until the pointer enters the overlay
	focus := El("g", "id", sc.FocusID, "class", "focus", "display", "none")
	focus.Append(
		El("circle", "r", "6", "fill", "#2b7be4", "stroke", "#fff", "stroke-width", "2"),
		El("text", "x", "10", "y", "-12", "font-size", "13", "fill", "#05293c", "font-weight", "600"),
	)
	g.Append(focus)
	g.Append(El("rect", "id", sc.OverlayID, "class", "overlay",
		"width", num(pw), "height", num(ph), "fill", "transparent"))
	svg.Append(g)

	svg.Append(
		El("text", "class", "axis-label", "text-anchor", "middle",
			"x", num(layout.Margin.Left+pw/2), "y", num(layout.Height-6)).WithText(opts.XLabel),
		El("text", "class", "axis-label", "text-anchor", "middle", "transform", "rotate(-90)",
			"x", num(-(layout.Margin.Top+ph/2)), "y", "20").WithText(opts.YLabel),
	)
	sc.Root = svg
	return sc, nil
}

func defs(glowID, gradID string) *Node {
	merge := El("feMerge").Append(
		El("feMergeNode", "in", "coloredBlur"),
		El("feMergeNode", "in", "SourceGraphic"),
	)
	filter := El("filter", "id", glowID, "x", "-50%", "y", "-50%", "width", "200%", "height", "200%").Append(
		El("feGaussianBlur", "stdDeviation", "4", "result", "coloredBlur"),
		merge,
	)
	grad := El("linearGradient", "id", gradID, "x1", "0", "x2", "0", "y1", "0", "y2", "1").Append(
		El("stop", "offset", "0%", "stop-color", "#e6f3ff", "stop-opacity", "0.95"),
		El("stop", "offset", "40%", "stop-color", "#d6ecff", "stop-opacity", "0.85"),
		El("stop", "offset", "100%", "stop-color", "#f7fbff", "stop-opacity", "0.9"),
	)
	return El("defs").Append(filter, grad)
}

// xAxis puts one tick on every year of the series.
func xAxis(series Series, xs Linear, plotHeight float64) *Node {
	g := El("g", "class", "yc-axis axis-x", "transform", translate(0, plotHeight), "text-anchor", "middle")
	g.Append(El("path", "class", "domain", "fill", "none",
		"d", "M"+num(xs.R0)+",6V0H"+num(xs.R1)+"V6"))
	for _, p := range series {
		x := xs.Map(float64(p.Year))
		g.Append(El("g", "class", "tick", "transform", translate(x, 0)).Append(
			El("line", "y2", "6"),
			El("text", "y", "9", "dy", "0.71em").WithText(FormatYear(p.Year)),
		))
	}
	return g
}

func yAxis(ys Linear, count int) *Node {
	g := El("g", "class", "yc-axis axis-y", "text-anchor", "end")
	g.Append(El("path", "class", "domain", "fill", "none",
		"d", "M-6,"+num(ys.R0)+"H0V"+num(ys.R1)+"H-6"))
	for _, v := range ys.Ticks(count) {
		g.Append(El("g", "class", "tick", "transform", translate(0, ys.Map(v))).Append(
			El("line", "x2", "-6"),
			El("text", "x", "-9", "dy", "0.32em").WithText(FormatSI(v)),
		))
	}
	return g
}

// Caption summarises a rendered series for the note under the chart.
func Caption(series Series) string {
	if len(series) == 0 {
		return ""
	}
	return "Years: " + strconv.Itoa(series.First().Year) + "–" + strconv.Itoa(series.Last().Year) +
		" • Points: " + strconv.Itoa(len(series))
}

func translate(x, y float64) string {
	return "translate(" + num(x) + "," + num(y) + ")"
}

func num(v float64) string { return fmtCoord(v) }
