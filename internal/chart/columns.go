package chart

import (
	"fmt"
	"regexp"
)

// DefaultYearColumn is used when no header mentions "year".
const DefaultYearColumn = "Commitment Year"

var (
	DefaultYearPatterns  = []string{`(?i)year`}
	DefaultValuePatterns = []string{`(?i)value`, `(?i)amount`, `(?i)count`, `(?i)total`, `(?i)sum`, `(?i)usd`}
)

// Columns names the CSV headers the aggregator reads. An empty Value means counting mode.
type Columns struct {
	Year  string
	Value string
}

func (c Columns) Counting() bool { return c.Value == "" }

// ColumnResolver picks the year and value columns from the header list.
type ColumnResolver interface {
	Resolve(headers []string) Columns
}

// RankedPatterns walks the headers in declaration order and returns the first one matching
// any pattern of the list. Year falls back to YearFallback; Value falls back to counting mode.
type RankedPatterns struct {
	Year         []*regexp.Regexp
	Value        []*regexp.Regexp
	YearFallback string
}

// NewRankedPatterns compiles the pattern lists. Empty lists mean "never matches".
func NewRankedPatterns(year, value []string, yearFallback string) (*RankedPatterns, error) {
	yp, err := compileAll(year)
	if err != nil {
		return nil, fmt.Errorf("year patterns: %w", err)
	}
	vp, err := compileAll(value)
	if err != nil {
		return nil, fmt.Errorf("value patterns: %w", err)
	}
	return &RankedPatterns{Year: yp, Value: vp, YearFallback: yearFallback}, nil
}

// DefaultResolver matches "year" for the year column and value/amount/count/total/sum/usd
// for the value column.
func DefaultResolver() *RankedPatterns {
	r, err := NewRankedPatterns(DefaultYearPatterns, DefaultValuePatterns, DefaultYearColumn)
	if err != nil {
		panic(err)
	}
	return r
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func (r *RankedPatterns) Resolve(headers []string) Columns {
	cols := Columns{Year: firstMatch(headers, r.Year)}
	if cols.Year == "" {
		cols.Year = r.YearFallback
	}
	cols.Value = firstMatch(headers, r.Value)
	return cols
}

// firstMatch: ties go to the header declared first, not to the pattern ranked first
func firstMatch(headers []string, patterns []*regexp.Regexp) string {
	for _, h := range headers {
		for _, re := range patterns {
			if re.MatchString(h) {
				return h
			}
		}
	}
	return ""
}

// ColumnFunc adapts a plain function to ColumnResolver.
type ColumnFunc func(headers []string) Columns

func (f ColumnFunc) Resolve(headers []string) Columns { return f(headers) }
