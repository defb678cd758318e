package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSeries = Series{{Year: 2000, Value: 5}, {Year: 2001, Value: 9}, {Year: 2003, Value: 2}}

func testLayout() Layout {
	return Layout{Width: DefaultWidth, Height: DefaultHeight, Margin: DefaultMargin}
}

func buildScene(t *testing.T, opts RenderOptions) *Scene {
	t.Helper()
	sc, err := Renderer{Options: opts}.Build(testSeries, testLayout())
	require.NoError(t, err)
	return sc
}

func tickLabels(axis *Node) []string {
	var out []string
	for _, tick := range axis.FindAll("tick") {
		for _, c := range tick.Children {
			if c.Tag == "text" {
				out = append(out, c.Text)
			}
		}
	}
	return out
}

func TestBuildAxes(t *testing.T) {
	sc := buildScene(t, RenderOptions{})

	xs := sc.Root.FindAll("axis-x")
	require.Len(t, xs, 1)
	assert.Equal(t, []string{"2000", "2001", "2003"}, tickLabels(xs[0]))

	ys := sc.Root.FindAll("axis-y")
	require.Len(t, ys, 1)
	assert.Equal(t, []string{"0", "2", "4", "6", "8", "10"}, tickLabels(ys[0]))

	assert.Equal(t, 10.0, sc.Y.D1)
	assert.Equal(t, 798.0, sc.X.R1)
}

func TestBuildStructure(t *testing.T) {
	sc := buildScene(t, RenderOptions{IDSuffix: "-t1"})

	assert.Equal(t, "svg", sc.Root.Tag)
	assert.Equal(t, "0 0 900 460", sc.Root.Get("viewBox"))
	assert.Equal(t, "focus-t1", sc.FocusID)
	assert.Equal(t, "overlay-t1", sc.OverlayID)

	plot := sc.Root.Children[2]
	assert.Equal(t, "translate(74,28)", plot.Get("transform"))
	// the overlay is the top-most node so pointer events reach it
	last := plot.Children[len(plot.Children)-1]
	assert.Equal(t, "overlay-t1", last.Get("id"))
	assert.Equal(t, "798", last.Get("width"))
	assert.Equal(t, "378", last.Get("height"))

	focus := sc.Root.Find("focus-t1")
	require.NotNil(t, focus)
	assert.Equal(t, "none", focus.Get("display"))

	lines := sc.Root.FindAll("yc-line")
	require.Len(t, lines, 1)
	assert.Equal(t, "1", lines[0].Get("pathLength"))
	assert.Equal(t, "url(#glow-t1)", lines[0].Get("filter"))
	assert.Len(t, sc.Root.FindAll("yc-area"), 1)

	m := sc.Markup()
	assert.True(t, strings.HasPrefix(m, `<svg xmlns="http://www.w3.org/2000/svg"`), m[:40])
	assert.Contains(t, m, `id="areaGradient-t1"`)
	assert.Contains(t, m, ">Year</text>")
	assert.Contains(t, m, ">Number of Projects</text>")
}

func TestBuildPoints(t *testing.T) {
	sc := buildScene(t, RenderOptions{})
	require.Len(t, sc.Points, 3)
	assert.Equal(t, 0.0, sc.Points[0].X)
	assert.InDelta(t, 266.0, sc.Points[1].X, 1e-9)
	assert.InDelta(t, 378-378*9/10.0, sc.Points[1].Y, 1e-9)
	assert.Equal(t, "2001: 9", sc.Points[1].Label)
	assert.Equal(t, "Years: 2000–2003 • Points: 3", sc.Caption)
}

func TestBuildLabels(t *testing.T) {
	sc := buildScene(t, RenderOptions{XLabel: "Fiscal <year>", YLabel: "USD"})
	m := sc.Markup()
	assert.Contains(t, m, ">Fiscal &lt;year&gt;</text>")
	assert.Contains(t, m, ">USD</text>")
}

func TestBuildErrors(t *testing.T) {
	_, err := Renderer{}.Build(nil, testLayout())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNoData))
	assert.Equal(t, "No valid year/value pairs.", Diagnostic(err))

	_, err = Renderer{}.Build(testSeries, Layout{Width: 80, Height: 460, Margin: DefaultMargin})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindRender))
	assert.True(t, strings.HasPrefix(Diagnostic(err), "Error rendering chart: "))
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "", Caption(nil))
	assert.Equal(t, "Years: 2010–2010 • Points: 1", Caption(Series{{Year: 2010, Value: 1}}))
}
