// Package analysis post-processes sampled run series.
//
//   - [AnalyzeSpectrum]: power spectrum and dominant oscillation frequency
//     of one column, e.g. thermal power
//   - [NewPortrait]: two-column phase portrait such as power against
//     reactivity, rendered as text by [Portrait.ASCII]
//
// Runner samples are not always evenly spaced: collapse and final snapshots
// fall off the sampling grid and scripted speed changes stretch it, so
// [AnalyzeSpectrum] resamples with [Resample] before transforming.
package analysis
