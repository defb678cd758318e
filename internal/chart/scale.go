package chart

import "math"

// DefaultHeadroom stretches the value domain above the tallest point.
const DefaultHeadroom = 1.08

// Linear maps [D0, D1] onto [R0, R1]. A zero-width domain maps everything to the middle of
// the range.
type Linear struct {
	D0 float64 `json:"d0"`
	D1 float64 `json:"d1"`
	R0 float64 `json:"r0"`
	R1 float64 `json:"r1"`
}

func (s Linear) Map(v float64) float64 {
	span := s.D1 - s.D0
	if span == 0 {
		return (s.R0 + s.R1) / 2
	}
	t := (v - s.D0) / span
	return s.R0 + t*(s.R1-s.R0)
}

// Invert is the reverse of Map. A zero-width range or domain returns D0.
func (s Linear) Invert(px float64) float64 {
	span := s.R1 - s.R0
	if span == 0 || s.D1 == s.D0 {
		return s.D0
	}
	t := (px - s.R0) / span
	return s.D0 + t*(s.D1-s.D0)
}

// Nice extends the domain to round values the way d3's linear.nice(count) does.
func (s Linear) Nice(count int) Linear {
	start, stop := s.D0, s.D1
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}
	var prestep float64
loop:
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, float64(count))
		if step == prestep {
			break
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			break loop
		}
		prestep = step
	}
	if reversed {
		start, stop = stop, start
	}
	s.D0, s.D1 = start, stop
	return s
}

// Ticks returns roughly count round values inside the domain.
func (s Linear) Ticks(count int) []float64 {
	return ticks(math.Min(s.D0, s.D1), math.Max(s.D0, s.D1), float64(count))
}

// XScale maps years onto [0, plotWidth].
func XScale(series Series, plotWidth float64) Linear {
	if len(series) == 0 {
		return Linear{R1: plotWidth}
	}
	return Linear{
		D0: float64(series.First().Year),
		D1: float64(series.Last().Year),
		R0: 0,
		R1: plotWidth,
	}
}

// YScale maps [0, max*headroom] onto [plotHeight, 0] and rounds the domain.
func YScale(series Series, plotHeight, headroom float64) Linear {
	top := series.MaxValue() * headroom
	if !(top > 0) {
		top = 1
	}
	return Linear{D0: 0, D1: top, R0: plotHeight, R1: 0}.Nice(10)
}

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

func tickFactor(errv float64) float64 {
	switch {
	case errv >= e10:
		return 10
	case errv >= e5:
		return 5
	case errv >= e2:
		return 2
	}
	return 1
}

// tickIncrement returns a positive step for power >= 0 and the negated inverse step
// otherwise, which keeps small steps exact.
func tickIncrement(start, stop, count float64) float64 {
	step := (stop - start) / math.Max(0, count)
	if !(step > 0) || math.IsInf(step, 0) {
		return 0
	}
	power := math.Floor(math.Log10(step))
	f := tickFactor(step / math.Pow(10, power))
	if power >= 0 {
		return f * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / f
}

func ticks(start, stop, count float64) []float64 {
	if !(count > 0) || stop <= start {
		if stop == start {
			return []float64{start}
		}
		return nil
	}
	i1, i2, inc := tickSpec(start, stop, count)
	if i2 < i1 {
		return nil
	}
	out := make([]float64, 0, int(i2-i1)+1)
	for i := i1; i <= i2; i++ {
		if inc < 0 {
			out = append(out, i/-inc)
		} else {
			out = append(out, i*inc)
		}
	}
	return out
}

func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	f := tickFactor(step / math.Pow(10, power))
	if power < 0 {
		inc = math.Pow(10, -power) / f
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * f
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}
