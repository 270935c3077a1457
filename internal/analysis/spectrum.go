package analysis

import (
	"errors"
	"math"
	"math/bits"
	"math/cmplx"
)

var (
	ErrTooFewSamples = errors.New("analysis: need at least 4 samples")
	ErrUnordered     = errors.New("analysis: samples do not advance in time")
)

// FFT returns the discrete Fourier transform of data zero-padded to the
// next power of 2.
func FFT(data []float64) []complex128 {
	n := nextPow2(len(data))
	shift := bits.UintSize - (bits.Len(uint(n)) - 1)

	out := make([]complex128, n)
	for i, v := range data {
		out[bits.Reverse(uint(i))>>shift] = complex(v, 0)
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		for k := 0; k < half; k++ {
			w := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(size))
			for lo := k; lo < n; lo += size {
				hi := lo + half
				odd := w * out[hi]
				out[lo], out[hi] = out[lo]+odd, out[lo]-odd
			}
		}
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitude of the positive-frequency half of the
// transform of data with its mean removed.
func PowerSpectrum(data []float64) []float64 {
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	centered := make([]float64, len(data))
	if len(data) > 0 {
		mean /= float64(len(data))
	}
	for i, v := range data {
		centered[i] = v - mean
	}

	fft := FFT(centered)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// Resample interpolates values linearly onto len(times) evenly spaced
// points covering the same span, and returns the new spacing. times must be
// non-decreasing and hold at least two entries.
func Resample(times, values []float64) (float64, []float64) {
	n := len(times)
	interval := (times[n-1] - times[0]) / float64(n-1)

	out := make([]float64, n)
	j := 0
	for i := range out {
		t := times[0] + float64(i)*interval
		for j < n-2 && times[j+1] <= t {
			j++
		}
		span := times[j+1] - times[j]
		if span <= 0 {
			out[i] = values[j+1]
			continue
		}
		out[i] = values[j] + (t-times[j])/span*(values[j+1]-values[j])
	}
	out[n-1] = values[n-1]
	return interval, out
}

// Spectrum is the power spectrum of a series sampled every Interval seconds.
type Spectrum struct {
	Interval float64
	Freqs    []float64 // Hz
	Power    []float64
}

// AnalyzeSpectrum computes the spectrum of values sampled at times. Uneven
// spacing is resampled onto a uniform grid first.
func AnalyzeSpectrum(times, values []float64) (*Spectrum, error) {
	if len(values) < 4 || len(times) != len(values) {
		return nil, ErrTooFewSamples
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, ErrUnordered
		}
	}

	interval, uniform := Resample(times, values)
	if !(interval > 0) {
		return nil, ErrUnordered
	}

	ps := PowerSpectrum(uniform)
	n := 2 * len(ps)
	freqs := make([]float64, len(ps))
	for i := range freqs {
		freqs[i] = float64(i) / (float64(n) * interval)
	}

	return &Spectrum{Interval: interval, Freqs: freqs, Power: ps}, nil
}

// Dominant returns the frequency with the most power, skipping DC. It
// returns 0 when the series is flat.
func (s *Spectrum) Dominant() float64 {
	maxPower := 0.0
	maxIdx := 0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > maxPower {
			maxPower = s.Power[i]
			maxIdx = i
		}
	}
	return s.Freqs[maxIdx]
}
