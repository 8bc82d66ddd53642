/*
NAME
  pcm.go

DESCRIPTION
  pcm.go contains functions for processing pcm.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pcm provides functions for processing and converting pcm audio.
package pcm

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// SampleFormat is the format that a PCM Buffer's samples can be in.
type SampleFormat int

// Used to represent an unknown format.
const (
	Unknown SampleFormat = -1
)

// Sample formats that we use.
const (
	S16_LE SampleFormat = iota
	S32_LE
)

// BufferFormat contains the format for a PCM Buffer.
type BufferFormat struct {
	SFormat  SampleFormat
	Rate     uint
	Channels uint
}

// Buffer contains a buffer of PCM data and the format that it is in.
type Buffer struct {
	Format BufferFormat
	Data   []byte
}

// DataSize takes audio attributes describing PCM audio data and returns the size of that data.
func DataSize(rate, channels, bitDepth uint, period float64) int {
	s := int(float64(channels) * float64(rate) * float64(bitDepth/8) * period)
	return s
}

// Frames returns the number of whole frames (one sample per channel) in b.
func (b Buffer) Frames() int {
	n := b.Format.SFormat.ByteDepth() * int(b.Format.Channels)
	if n == 0 {
		return 0
	}
	return len(b.Data) / n
}

// ByteDepth returns the number of bytes in one sample of format f, or 0 if f
// is unknown.
func (f SampleFormat) ByteDepth() int {
	switch f {
	case S16_LE:
		return 2
	case S32_LE:
		return 4
	default:
		return 0
	}
}

// Resample takes Buffer c and resamples the pcm audio data to 'rate' Hz and returns a Buffer with the resampled data.
// Notes:
//   - When c's rate is a whole multiple of 'rate', each output frame is the average of the input frames it replaces.
//     If the number of bytes in c.Data is not divisible by the decimation factor (ratioFrom), the remaining bytes will
//     not be included in the result. Eg. input of length 480002 downsampling 6:1 will result in output length 80000.
//   - Any other ratio is resampled by linear interpolation between neighbouring frames. Apply AntiAlias first when
//     downsampling by such a ratio.
func Resample(c Buffer, rate uint) (Buffer, error) {
	if c.Format.Rate == rate {
		return c, nil
	}
	if c.Format.Rate == 0 {
		return Buffer{}, errors.Errorf("unable to convert from: %v Hz", c.Format.Rate)
	}
	if rate == 0 {
		return Buffer{}, errors.Errorf("unable to convert to: %v Hz", rate)
	}

	// The number of bytes in a frame.
	sampleLen := c.Format.SFormat.ByteDepth() * int(c.Format.Channels)
	if sampleLen == 0 {
		return Buffer{}, errors.Errorf("unhandled sample format %v with %d channels", c.Format.SFormat, c.Format.Channels)
	}

	// Calculate sample rate ratio ratioFrom:ratioTo.
	rateGcd := gcd(rate, c.Format.Rate)
	ratioFrom := int(c.Format.Rate / rateGcd)
	ratioTo := int(rate / rateGcd)

	var resampled []byte
	if ratioTo == 1 {
		resampled = decimate(c, sampleLen, ratioFrom)
	} else {
		resampled = interpolate(c, sampleLen, ratioFrom, ratioTo)
	}

	// Return a new Buffer with resampled data.
	return Buffer{
		Format: BufferFormat{
			Channels: c.Format.Channels,
			SFormat:  c.Format.SFormat,
			Rate:     rate,
		},
		Data: resampled,
	}, nil
}

// decimate averages every ratioFrom frames of c into one.
func decimate(c Buffer, sampleLen, ratioFrom int) []byte {
	depth := c.Format.SFormat.ByteDepth()
	channels := int(c.Format.Channels)
	newLen := len(c.Data) / ratioFrom
	resampled := make([]byte, 0, newLen)

	// For each new frame to be generated, loop through the respective 'ratioFrom' frames in 'c.Data' to add them
	// up and average them per channel. The result is the new frame.
	bAvg := make([]byte, sampleLen)
	for i := 0; i < newLen/sampleLen; i++ {
		for ch := 0; ch < channels; ch++ {
			var sum int
			for j := 0; j < ratioFrom; j++ {
				off := (i*ratioFrom+j)*sampleLen + ch*depth
				sum += readSample(c.Data[off:], c.Format.SFormat)
			}
			writeSample(bAvg[ch*depth:], c.Format.SFormat, sum/ratioFrom)
		}
		resampled = append(resampled, bAvg...)
	}
	return resampled
}

// interpolate resamples c by the rational factor ratioTo/ratioFrom, placing
// each output frame on the line between its two nearest input frames.
func interpolate(c Buffer, sampleLen, ratioFrom, ratioTo int) []byte {
	depth := c.Format.SFormat.ByteDepth()
	channels := int(c.Format.Channels)
	frames := len(c.Data) / sampleLen
	if frames == 0 {
		return []byte{}
	}
	outFrames := frames * ratioTo / ratioFrom
	resampled := make([]byte, outFrames*sampleLen)

	for k := 0; k < outFrames; k++ {
		pos := k * ratioFrom
		i := pos / ratioTo
		frac := float64(pos%ratioTo) / float64(ratioTo)
		next := i + 1
		if next >= frames {
			next = frames - 1
		}
		for ch := 0; ch < channels; ch++ {
			a := float64(readSample(c.Data[i*sampleLen+ch*depth:], c.Format.SFormat))
			b := float64(readSample(c.Data[next*sampleLen+ch*depth:], c.Format.SFormat))
			v := int(math.Round(a + (b-a)*frac))
			writeSample(resampled[k*sampleLen+ch*depth:], c.Format.SFormat, v)
		}
	}
	return resampled
}

// readSample returns the first sample of b in format f.
func readSample(b []byte, f SampleFormat) int {
	switch f {
	case S32_LE:
		return int(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int(int16(binary.LittleEndian.Uint16(b)))
	}
}

// writeSample writes v to the start of b in format f.
func writeSample(b []byte, f SampleFormat, v int) {
	switch f {
	case S32_LE:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint16(b, uint16(v))
	}
}

// StereoToMono returns raw mono audio data generated from only the left channel from
// the given stereo Buffer
func StereoToMono(c Buffer) (Buffer, error) {
	if c.Format.Channels == 1 {
		return c, nil
	}
	if c.Format.Channels != 2 {
		return Buffer{}, errors.Errorf("audio is not stereo or mono, it has %v channels", c.Format.Channels)
	}

	stereoSampleBytes := 2 * c.Format.SFormat.ByteDepth()
	if stereoSampleBytes == 0 {
		return Buffer{}, errors.Errorf("unhandled sample format %v", c.Format.SFormat)
	}

	// Only whole stereo frames are converted.
	recLength := len(c.Data) - len(c.Data)%stereoSampleBytes
	mono := make([]byte, recLength/2)

	// Convert to mono: for each byte in the stereo recording, if it's in the first half of a stereo sample
	// (left channel), add it to the new mono audio data.
	var inc int
	for i := 0; i < recLength; i++ {
		if i%stereoSampleBytes < stereoSampleBytes/2 {
			mono[inc] = c.Data[i]
			inc++
		}
	}

	// Return a new Buffer with resampled data.
	return Buffer{
		Format: BufferFormat{
			Channels: 1,
			SFormat:  c.Format.SFormat,
			Rate:     c.Format.Rate,
		},
		Data: mono,
	}, nil
}

// gcd is used for calculating the greatest common divisor of two positive integers, a and b.
// assumes given a and b are positive.
func gcd(a, b uint) uint {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// String returns the string representation of a SampleFormat.
func (f SampleFormat) String() string {
	switch f {
	case S16_LE:
		return "S16_LE"
	case S32_LE:
		return "S32_LE"
	default:
		return "Unknown"
	}
}

// SFFromString takes a string representing a sample format and returns the corresponding SampleFormat.
func SFFromString(s string) (SampleFormat, error) {
	switch s {
	case "S16_LE":
		return S16_LE, nil
	case "S32_LE":
		return S32_LE, nil
	default:
		return Unknown, errors.Errorf("unknown sample format (%s)", s)
	}
}
