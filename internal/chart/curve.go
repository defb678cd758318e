package chart

import (
	"math"
	"strconv"
	"strings"
)

// DefaultCurveAlpha gives the centripetal Catmull-Rom variant
const DefaultCurveAlpha = 0.5

const curveEpsilon = 1e-12

// Vec is a pixel position
type Vec struct{ X, Y float64 }

// pathData builds an svg path "d" attribute
type pathData struct {
	sb strings.Builder
}

func (p *pathData) cmd(c byte, xs ...float64) {
	p.sb.WriteByte(c)
	for i, v := range xs {
		if i > 0 {
			p.sb.WriteByte(',')
		}
		p.sb.WriteString(fmtCoord(v))
	}
}

func (p *pathData) moveTo(x, y float64) { p.cmd('M', x, y) }
func (p *pathData) lineTo(x, y float64) { p.cmd('L', x, y) }
func (p *pathData) curveTo(x1, y1, x2, y2, x, y float64) { p.cmd('C', x1, y1, x2, y2, x, y) }
func (p *pathData) closePath() { p.sb.WriteByte('Z') }
func (p *pathData) String() string { return p.sb.String() }

// fmtCoord keeps three decimals and drops trailing zeros
func fmtCoord(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// catmullRom emits cubic segments through every point it is fed. The knot spacing is the
// distance between points raised to alpha: 0 is uniform, 0.5 centripetal, 1 chordal.
type catmullRom struct {
	p     *pathData
	alpha float64
	line  bool // continue the current subpath instead of starting a new one
	n     int

	x0, y0, x1, y1, x2, y2 float64
	l01a, l12a, l23a       float64
	l012a, l122a, l232a    float64
}

func (c *catmullRom) point(x, y float64) {
	if c.n > 0 {
		dx, dy := c.x2-x, c.y2-y
		c.l232a = math.Pow(dx*dx+dy*dy, c.alpha)
		c.l23a = math.Sqrt(c.l232a)
	}
	switch c.n {
	case 0:
		c.n = 1
		if c.line {
			c.p.lineTo(x, y)
		} else {
			c.p.moveTo(x, y)
		}
	case 1:
		c.n = 2
	case 2:
		c.n = 3
		c.segment(x, y)
	default:
		c.segment(x, y)
	}
	c.l01a, c.l12a = c.l12a, c.l23a
	c.l012a, c.l122a = c.l122a, c.l232a
	c.x0, c.x1, c.x2 = c.x1, c.x2, x
	c.y0, c.y1, c.y2 = c.y1, c.y2, y
}

// segment draws from (x1,y1) to (x2,y2); (x,y) is the point after
func (c *catmullRom) segment(x, y float64) {
	cx1, cy1, cx2, cy2 := c.x1, c.y1, c.x2, c.y2
	if c.l01a > curveEpsilon {
		a := 2*c.l012a + 3*c.l01a*c.l12a + c.l122a
		n := 3 * c.l01a * (c.l01a + c.l12a)
		cx1 = (cx1*a - c.x0*c.l122a + c.x2*c.l012a) / n
		cy1 = (cy1*a - c.y0*c.l122a + c.y2*c.l012a) / n
	}
	if c.l23a > curveEpsilon {
		b := 2*c.l232a + 3*c.l23a*c.l12a + c.l122a
		m := 3 * c.l23a * (c.l23a + c.l12a)
		cx2 = (cx2*b + c.x1*c.l232a - x*c.l122a) / m
		cy2 = (cy2*b + c.y1*c.l232a - y*c.l122a) / m
	}
	c.p.curveTo(cx1, cy1, cx2, cy2, c.x2, c.y2)
}

func (c *catmullRom) end() {
	switch c.n {
	case 2:
		c.p.lineTo(c.x2, c.y2)
	case 3:
		c.point(c.x2, c.y2)
	}
}

func curveThrough(p *pathData, pts []Vec, alpha float64, line bool) {
	c := &catmullRom{p: p, alpha: alpha, line: line}
	for _, v := range pts {
		c.point(v.X, v.Y)
	}
	c.end()
}

// LinePath returns a smooth open path through pts
func LinePath(pts []Vec, alpha float64) string {
	if len(pts) == 0 {
		return ""
	}
	var p pathData
	curveThrough(&p, pts, alpha, false)
	return p.String()
}

// AreaPath returns a closed path running along pts and back along the horizontal baseline
func AreaPath(pts []Vec, baseline, alpha float64) string {
	if len(pts) == 0 {
		return ""
	}
	base := make([]Vec, len(pts))
	for i := range pts {
		base[len(pts)-1-i] = Vec{X: pts[i].X, Y: baseline}
	}
	var p pathData
	curveThrough(&p, pts, alpha, false)
	curveThrough(&p, base, alpha, true)
	p.closePath()
	return p.String()
}
