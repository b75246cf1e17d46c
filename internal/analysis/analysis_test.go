package analysis

import (
	"math"
	"testing"
)

func TestDominantFrequency(t *testing.T) {
	const (
		n  = 256
		dt = 0.01
		f  = 12.5 // lands exactly on bin 32
	)
	data := make([]float64, n)
	for i := range data {
		data[i] = 5 + math.Sin(2*math.Pi*f*float64(i)*dt)
	}

	freq, power := DominantFrequency(data, dt)
	if math.Abs(freq-f) > 1e-9 {
		t.Errorf("expected %g Hz, got %g", f, freq)
	}
	if power <= 0 {
		t.Errorf("expected positive power, got %g", power)
	}
}

func TestDominantFrequencyFlat(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		dt   float64
	}{
		{"empty", nil, 0.1},
		{"single", []float64{3}, 0.1},
		{"constant", []float64{2, 2, 2, 2, 2, 2, 2, 2}, 0.1},
		{"bad dt", []float64{1, 2, 1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freq, power := DominantFrequency(tt.data, tt.dt)
			if freq != 0 || power != 0 {
				t.Errorf("expected zeros, got %g, %g", freq, power)
			}
		})
	}
}

func TestPowerSpectrumRemovesMean(t *testing.T) {
	ps := PowerSpectrum([]float64{10, 12, 10, 12})
	if len(ps) != 2 {
		t.Fatalf("expected 2 bins, got %d", len(ps))
	}
	if ps[0] > 1e-9 {
		t.Errorf("constant bin should vanish, got %g", ps[0])
	}
}

func TestSummarize(t *testing.T) {
	times := []float64{0, 1, 2, 3}
	values := []float64{1, 3, 5, 7}

	s := Summarize(times, values)
	if s.Mean != 4 || s.Min != 1 || s.Max != 7 {
		t.Errorf("unexpected summary %+v", s)
	}
	if math.Abs(s.Slope-2) > 1e-12 {
		t.Errorf("expected slope 2, got %g", s.Slope)
	}
	if s.StdDev <= 0 {
		t.Errorf("expected positive spread, got %g", s.StdDev)
	}

	if (Summarize(nil, nil) != Summary{}) {
		t.Error("empty input should give zero summary")
	}
	if (Summarize([]float64{1}, []float64{1, 2}) != Summary{}) {
		t.Error("mismatched input should give zero summary")
	}
}
