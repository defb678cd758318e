package chart

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCounting(t *testing.T) {
	rows := []RawRow{
		{"year": "2003"},
		{"year": "2001"},
		{"year": "2003"},
		{"year": "n/a"},
		{"year": ""},
		{"year": " 2001 "},
	}
	got := Aggregate(rows, Columns{Year: "year"})
	assert.Equal(t, Series{{Year: 2001, Value: 2}, {Year: 2003, Value: 2}}, got)
}

func TestAggregateSums(t *testing.T) {
	rows := []RawRow{
		{"Year": "2000", "usd": "5"},
		{"Year": "2000", "usd": "2.5"},
		{"Year": "2001", "usd": "oops"},
		{"Year": "2001", "usd": "-4"},
		{"Year": "2002", "usd": ""},
	}
	got := Aggregate(rows, Columns{Year: "Year", Value: "usd"})
	assert.Equal(t, Series{
		{Year: 2000, Value: 7.5},
		{Year: 2001, Value: -4},
		{Year: 2002, Value: 0},
	}, got)
}

func TestAggregateMissingYearColumn(t *testing.T) {
	rows := []RawRow{{"date": "2000"}, {"date": "2001"}}
	assert.Empty(t, Aggregate(rows, Columns{Year: DefaultYearColumn}))
}

func TestAggregateFractionalYear(t *testing.T) {
	rows := []RawRow{{"y": "2000.0"}, {"y": "2000.7"}, {"y": "1e3"}}
	assert.Equal(t, Series{{Year: 1000, Value: 1}, {Year: 2000, Value: 2}}, Aggregate(rows, Columns{Year: "y"}))
}

func TestAggregateOutOfRangeYear(t *testing.T) {
	rows := []RawRow{
		{"year": "2000"},
		{"year": "1e19"},
		{"year": "-1e19"},
		{"year": "9223372036854775808"},
		{"year": "1000000001"},
	}
	got := Aggregate(rows, Columns{Year: "year"})
	assert.Equal(t, Series{{Year: 2000, Value: 1}}, got)
	assert.Equal(t, "Years: 2000–2000 • Points: 1", Caption(got))
}

// random rows: years are unique and ascending, per-year sums match a direct tally
func TestAggregateProperties(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		var rows []RawRow
		sums := map[int]float64{}
		counts := map[int]float64{}
		for i := 0; i < 200; i++ {
			y := 1990 + rnd.Intn(30)
			v := rnd.Intn(1000)
			rows = append(rows, RawRow{"year": strconv.Itoa(y), "value": strconv.Itoa(v)})
			sums[y] += float64(v)
			counts[y]++
		}

		summed := Aggregate(rows, Columns{Year: "year", Value: "value"})
		counted := Aggregate(rows, Columns{Year: "year"})
		require.Len(t, summed, len(sums))
		require.Len(t, counted, len(counts))
		for i, p := range summed {
			if i > 0 {
				require.Less(t, summed[i-1].Year, p.Year)
			}
			assert.Equal(t, sums[p.Year], p.Value)
			assert.Equal(t, counts[p.Year], counted[i].Value)
		}
	}
}
