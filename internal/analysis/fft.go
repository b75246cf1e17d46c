package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	mean := floats.Sum(data) / float64(len(data))
	centred := make([]float64, len(data))
	for i, v := range data {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	ps := make([]float64, len(spectrum)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}

	return ps
}

// Frequencies returns the frequency in Hz of each PowerSpectrum bin for n
// samples spaced dt apart.
func Frequencies(n int, dt float64) []float64 {
	out := make([]float64, n/2)
	for i := range out {
		out[i] = float64(i) / (float64(n) * dt)
	}
	return out
}

// DominantFrequency returns the frequency of the strongest non-constant
// component of data and its magnitude. It returns zeros when data is too
// short or flat.
func DominantFrequency(data []float64, dt float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}
	idx := floats.MaxIdx(ps[1:]) + 1
	if ps[idx] == 0 {
		return 0, 0
	}
	return Frequencies(len(data), dt)[idx], ps[idx]
}
