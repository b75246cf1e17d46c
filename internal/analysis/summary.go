package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	// Slope is the least-squares trend per unit time.
	Slope float64
}

// Summarize reduces values sampled at times. Mismatched or empty input
// yields the zero Summary.
func Summarize(times, values []float64) Summary {
	if len(values) == 0 || len(times) != len(values) {
		return Summary{}
	}
	s := Summary{
		Min: floats.Min(values),
		Max: floats.Max(values),
	}
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	if floats.Max(times) > floats.Min(times) {
		_, s.Slope = stat.LinearRegression(times, values, nil, false)
	}
	return s
}
