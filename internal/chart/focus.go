package chart

import "math"

// Focus is the hover marker state. X and Y are plot coordinates of the focused point.
type Focus struct {
	Visible bool
	Point   Point
	X, Y    float64
	Label   string
}

// Tooltip is the floating label. It mirrors Focus so only one text is ever shown; X and Y
// are svg coordinates (margins included).
type Tooltip struct {
	Visible bool
	Text    string
	X, Y    float64
}

// Nearest returns the index of the point whose year is closest to year, or -1 for an empty
// series. On a tie the earlier point wins.
func Nearest(series Series, year float64) int {
	if len(series) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(series); i++ {
		if math.Abs(float64(series[i].Year)-year) < math.Abs(float64(series[best].Year)-year) {
			best = i
		}
	}
	return best
}

// FocusAt resolves a pointer x (plot coordinates) to the nearest point.
func (s *Scene) FocusAt(px float64) Focus {
	i := Nearest(s.Series, s.X.Invert(px))
	if i < 0 {
		return Focus{}
	}
	p := s.Points[i]
	return Focus{Visible: s.focus.Visible, Point: p.Point, X: p.X, Y: p.Y, Label: p.Label}
}

// FocusYear focuses the point of the given year, if the series has one.
func (s *Scene) FocusYear(year int) (Focus, bool) {
	for _, p := range s.Points {
		if p.Year == year {
			return Focus{Visible: true, Point: p.Point, X: p.X, Y: p.Y, Label: p.Label}, true
		}
	}
	return Focus{}, false
}

// Focus returns the current hover state.
func (s *Scene) Focus() Focus { return s.focus }

// ApplyFocus writes f into the focus group of the scene graph.
func (s *Scene) ApplyFocus(f Focus) {
	s.focus = f
	g := s.Root.Find(s.FocusID)
	if g == nil {
		return
	}
	if f.Visible {
		g.Set("display", "inline")
	} else {
		g.Set("display", "none")
	}
	if f.Label == "" {
		return
	}
	g.Set("transform", translate(f.X, f.Y))
	for _, c := range g.Children {
		if c.Tag == "text" {
			c.Text = f.Label
		}
	}
}

// TooltipFor places the floating tooltip next to the focused point.
func (s *Scene) TooltipFor(f Focus) Tooltip {
	return Tooltip{
		Visible: f.Visible,
		Text:    f.Label,
		X:       s.Layout.Margin.Left + f.X + 12,
		Y:       s.Layout.Margin.Top + f.Y + 12,
	}
}
