/*
NAME
  filters.go

DESCRIPTION
  filter.go contains functions for filtering PCM audio.

AUTHOR
  David Sutton <davidsutton@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pcm

import (
	"errors"
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// antiAliasCutoff is the anti-aliasing cutoff as a fraction of the target rate.
const antiAliasCutoff = 0.45

// AudioFilter is an interface which contains an Apply function.
// Apply is used to apply the filter to the given buffer of PCM data (b.Data).
type AudioFilter interface {
	Apply(b Buffer) ([]byte, error)
}

// SelectiveFrequencyFilter is a struct which contains all the filter specifications required for a
// lowpass or highpass filter.
type SelectiveFrequencyFilter struct {
	coeffs     []float64
	cutoff     [2]float64
	sampleRate uint
	taps       int
	buffInfo   BufferFormat
}

// NewLowPass populates a LowPass struct with the specified data. The function also
// generates a lowpass filter based off the given specifications, and returns a pointer.
func NewLowPass(fc float64, info BufferFormat, length int) (*SelectiveFrequencyFilter, error) {
	return newLoHiFilter(fc, info, length, [2]float64{0, fc})
}

// NewHighPass populates a HighPass struct with the specified data. The function also
// generates a highpass filter based off the given specifications, and returns a pointer.
func NewHighPass(fc float64, info BufferFormat, length int) (*SelectiveFrequencyFilter, error) {
	return newLoHiFilter(fc, info, length, [2]float64{fc, 0})
}

// Apply is the SelectiveFrequencyFilter implementation of the AudioFilter interface. The
// filter is applied to each channel of b separately and the output is delayed by the
// filter's group delay, so it has taps more frames than the input. Use Align to trim it.
func (filter *SelectiveFrequencyFilter) Apply(b Buffer) ([]byte, error) {
	channels := int(b.Format.Channels)
	if channels == 0 {
		channels = 1
	}
	if b.Format.SFormat != S16_LE {
		return nil, fmt.Errorf("unhandled sample format %v", b.Format.SFormat)
	}
	if len(b.Data) == 0 {
		return nil, errors.New("no audio to filter")
	} else if len(b.Data)%(2*channels) != 0 {
		return nil, errors.New("uneven number of bytes (not whole number of frames)")
	}

	s := Samples(b.Data)
	n := len(s) / channels
	out := make([]float64, (n+filter.taps)*channels)
	x := make([]float64, n)
	for ch := 0; ch < channels; ch++ {
		for i := range x {
			x[i] = float64(s[i*channels+ch]) / fullScale
		}
		y, err := fastConvolve(x, filter.coeffs)
		if err != nil {
			return nil, fmt.Errorf("could not compute fast convolution: %w", err)
		}
		for i, v := range y {
			out[i*channels+ch] = v
		}
	}
	return floatsToBytes(out), nil
}

// Align trims the output of filter.Apply for a buffer of frames frames with the given
// number of channels so that it lines up with the input, removing the group delay.
func (filter *SelectiveFrequencyFilter) Align(filtered []byte, frames, channels int) []byte {
	if channels == 0 {
		channels = 1
	}
	start := 2 * channels * (filter.taps / 2)
	return filtered[start : start+2*channels*frames]
}

// AntiAlias low-pass filters b ahead of resampling it to rate Hz, cutting at 45% of
// rate, using a filter of the given length. The result is aligned with and the same
// length as the whole frames of b. Buffers already at or below rate are returned
// unchanged.
func AntiAlias(b Buffer, rate uint, taps int) (Buffer, error) {
	frames := b.Frames()
	if rate >= b.Format.Rate || frames == 0 {
		return b, nil
	}
	lp, err := NewLowPass(antiAliasCutoff*float64(rate), b.Format, taps)
	if err != nil {
		return Buffer{}, fmt.Errorf("could not create anti-aliasing filter: %w", err)
	}

	whole := Buffer{Format: b.Format, Data: b.Data[:frames*2*int(b.Format.Channels)]}
	filtered, err := lp.Apply(whole)
	if err != nil {
		return Buffer{}, fmt.Errorf("could not apply anti-aliasing filter: %w", err)
	}
	return Buffer{Format: b.Format, Data: lp.Align(filtered, frames, int(b.Format.Channels))}, nil
}

// Amplifier is a struct which contains the factor of amplification to be used in the application
// of the filter.
type Amplifier struct {
	factor float64
}

// NewAmplifier defines the factor of amplification for an amplifying filter.
func NewAmplifier(factor float64) *Amplifier {
	// Uses the absolute value of the factor to ensure compatibility.
	return &Amplifier{factor: math.Abs(factor)}
}

// Apply implemented for an amplifier takes the buffer data (b.Data), applies
// the amplification and returns a byte slice of filtered audio. Samples are
// clipped at full scale.
func (amp *Amplifier) Apply(b Buffer) ([]byte, error) {
	inputAsFloat, err := bytesToFloats(b.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to floats: %w", err)
	}

	for i := range inputAsFloat {
		inputAsFloat[i] *= amp.factor
	}
	return floatsToBytes(inputAsFloat), nil
}

// newLoHiFilter checks for the validity of the input parameters, and returns a pointer
// to either a lowpass or a highpass filter.
func newLoHiFilter(fc float64, info BufferFormat, length int, cutoff [2]float64) (*SelectiveFrequencyFilter, error) {
	// Ensure that all input values are valid.
	if fc <= 0 || fc >= float64(info.Rate)/2 {
		return nil, errors.New("cutoff frequency out of bounds")
	} else if length <= 0 {
		return nil, errors.New("cannot create filter with length <= 0")
	}

	// Determine the type of filter to be generated.
	var fd, factor1, factor2 float64
	switch {
	case cutoff[0] == 0: // Lowpass: cutoff[0] = 0, cutoff[1] = fc.
		fd = cutoff[1] / float64(info.Rate)
		factor1 = 1
		factor2 = 2 * fd
	case cutoff[1] == 0: // Highpass: cutoff[0] = fc, cutoff[1] = 0.
		fd = cutoff[0] / float64(info.Rate)
		factor1 = -1
		factor2 = 1 - 2*fd
	default:
		return nil, errors.New("tried to use newLoHiFilter to generate a band filter")
	}

	var newFilter = SelectiveFrequencyFilter{cutoff: cutoff, sampleRate: info.Rate, taps: length, buffInfo: info}

	// Windowed sinc, symmetric about taps/2.
	size := newFilter.taps + 1
	newFilter.coeffs = make([]float64, size)
	b := 2 * math.Pi * fd
	winData := window.FlatTop(size)
	for n := 0; n < (newFilter.taps / 2); n++ {
		c := float64(n) - float64(newFilter.taps)/2
		y := math.Sin(c*b) / (math.Pi * c)
		newFilter.coeffs[n] = factor1 * y * winData[n]
		newFilter.coeffs[size-1-n] = newFilter.coeffs[n]
	}
	newFilter.coeffs[newFilter.taps/2] = factor2 * winData[newFilter.taps/2]

	return &newFilter, nil
}

// bytesToFloats converts S16_LE pcm into floats between -1 and 1.
func bytesToFloats(b []byte) ([]float64, error) {
	// Ensure the validity of the input.
	if len(b) == 0 {
		return nil, errors.New("no audio to convert to floats")
	} else if len(b)%2 != 0 {
		return nil, errors.New("uneven number of bytes (not whole number of samples)")
	}

	s := Samples(b)
	f := make([]float64, len(s))
	for i, v := range s {
		f[i] = float64(v) / fullScale
	}
	return f, nil
}

// floatsToBytes converts a slice of float64 PCM data into a slice of signed 16bit PCM data.
// The input float slice should contain values between -1 and 1; values outside this range
// are clipped.
func floatsToBytes(f []float64) []byte {
	s := make([]int16, len(f))
	for i, v := range f {
		v = math.Round(v * math.MaxInt16)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		s[i] = int16(v)
	}
	return Bytes(s)
}

// fastConvolve takes in a signal and an FIR filter and computes the convolution (runs in O(nlog(n)) time).
func fastConvolve(x, h []float64) ([]float64, error) {
	// Ensure valid data to convolve.
	if len(x) == 0 || len(h) == 0 {
		return nil, errors.New("convolution requires slice of length > 0")
	}

	// Calculate the length of the linear convolution.
	convLen := len(x) + len(h) - 1

	// Pad signals to the next largest power of 2 larger than convLen.
	padLen := int(math.Pow(2, math.Ceil(math.Log2(float64(convLen)))))
	xp := make([]float64, padLen)
	copy(xp, x)
	hp := make([]float64, padLen)
	copy(hp, h)

	// Compute DFFTs.
	xFFT, hFFT := fft.FFTReal(xp), fft.FFTReal(hp)

	// Compute the multiplication of the two signals in the freq domain.
	yFFT := make([]complex128, padLen)
	for i := range xFFT {
		yFFT[i] = xFFT[i] * hFFT[i]
	}

	// Compute the IDFFT.
	iy := fft.IFFT(yFFT)

	// Convert to []float64, trimmed to the length of the linear convolution.
	y := make([]float64, convLen)
	for i := range y {
		y[i] = real(iy[i])
	}
	return y, nil
}
