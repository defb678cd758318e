// Package chart turns a CSV table into a yearly area chart: it detects the year and value
// columns, aggregates rows per year, maps the series onto pixel scales and builds an in-memory
// scene that a Surface commits in one step.
package chart

// RawRow maps a column name to the raw string value of one CSV data line
type RawRow map[string]string

// Table is a parsed CSV file. Headers keeps the declaration order that RawRow loses
type Table struct {
	Source  string
	Headers []string
	Rows    []RawRow
}

// Point is one aggregated year
type Point struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Series is sorted strictly ascending by year, one point per year
type Series []Point

// First and Last assume a non-empty series
func (s Series) First() Point { return s[0] }
func (s Series) Last() Point { return s[len(s)-1] }

// Years returns the year of every point, in order
func (s Series) Years() []int {
	out := make([]int, len(s))
	for i, p := range s {
		out[i] = p.Year
	}
	return out
}

// MaxValue returns the largest value, or 0 for an empty series
func (s Series) MaxValue() float64 {
	if len(s) == 0 {
		return 0
	}
	m := s[0].Value
	for _, p := range s[1:] {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}

// Margin is the space between the svg edge and the plot area
type Margin struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// Layout holds the outer svg size; the plot area is what remains inside Margin
type Layout struct {
	Width  float64
	Height float64
	Margin Margin
}

func (l Layout) PlotWidth() float64 { return l.Width - l.Margin.Left - l.Margin.Right }
func (l Layout) PlotHeight() float64 { return l.Height - l.Margin.Top - l.Margin.Bottom }
