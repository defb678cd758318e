package chart

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// maxYear bounds the magnitude of a year; larger values are treated as unparseable.
const maxYear = 1e9

// Aggregate sums the value column per year, or counts rows per year in counting mode.
// Rows whose year does not parse are dropped; a value that does not parse counts as 0.
func Aggregate(rows []RawRow, cols Columns) Series {
	sums := make(map[int]float64)
	for _, r := range rows {
		// a blank year cell is missing data and drops the row; it must not be folded into year 0
		y, ok := parseNumber(r[cols.Year])
		if !ok || math.Abs(y) > maxYear {
			continue
		}
		year := int(math.Trunc(y))
		v := 1.0
		if !cols.Counting() {
			v, ok = parseNumber(r[cols.Value])
			if !ok {
				v = 0
			}
		}
		sums[year] += v
	}

	out := make(Series, 0, len(sums))
	for y, v := range sums {
		out = append(out, Point{Year: y, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// parseNumber accepts anything strconv can read as a finite float after trimming spaces.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
