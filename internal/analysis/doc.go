// Package analysis characterizes the recorded stats series of a run.
//
//   - [PowerSpectrum] and [DominantFrequency]: oscillation in a series,
//     such as energy sloshing between a population and its wells
//   - [Summarize]: mean, spread, extrema and linear trend of a series
//
// Series are assumed to be sampled at a fixed interval dt.
package analysis
