package chart

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var localePrinter = message.NewPrinter(language.English)

// FormatSI abbreviates with an SI prefix and trims insignificant zeros: 1200 -> "1.2k"
func FormatSI(v float64) string {
	val, prefix := humanize.ComputeSI(v)
	return trimSignificant(val, 6) + prefix
}

// FormatLocale groups thousands and keeps at most three fraction digits: 1234.5 -> "1,234.5"
func FormatLocale(v float64) string {
	return localePrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatYear prints a year as a plain integer, no grouping
func FormatYear(y int) string {
	return strconv.Itoa(y)
}

func trimSignificant(v float64, digits int) string {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	if err != nil {
		r = v
	}
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// FocusLabel is the text shown next to the focus marker
func FocusLabel(p Point) string {
	return FormatYear(p.Year) + ": " + FormatLocale(p.Value)
}
