/*
NAME
  ulaw.go

DESCRIPTION
  ulaw.go provides G.711 mu-law companding of 16-bit linear PCM samples.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ulaw provides functions to encode 16-bit linear PCM to 8-bit
// G.711 mu-law.
package ulaw

import (
	"encoding/binary"
	"fmt"
)

const (
	byteDepth = 2     // Input samples are 16-bit.
	signBit   = 0x80  // Sign bit of an unmasked mu-law code.
	clip      = 32635 // Largest magnitude before the bias is added.
	bias      = 0x84  // Added to the magnitude so every segment has the same number of steps.
	segShift  = 4     // Position of the 3-bit segment in a code.
	mantMask  = 0x0F  // Mask of the 4-bit quantisation mantissa.
)

// Quantization selects how the mantissa of segment 0 is extracted.
type Quantization int

const (
	// G711 extracts every mantissa with a shift of segment+3, as ITU-T G.711 does.
	G711 Quantization = iota

	// Legacy matches the previous wav2ulaw converter, which shifted segment 0
	// magnitudes by 4 rather than 3. Samples in segments 1 to 7 encode
	// identically to G711.
	Legacy
)

// String returns the string representation of a Quantization.
func (q Quantization) String() string {
	switch q {
	case G711:
		return "g711"
	case Legacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// QuantizationFromString returns the Quantization named by s.
func QuantizationFromString(s string) (Quantization, error) {
	switch s {
	case "g711":
		return G711, nil
	case "legacy":
		return Legacy, nil
	default:
		return G711, fmt.Errorf("unknown quantization (%s)", s)
	}
}

// EncodeSample returns the mu-law code for a single 16-bit PCM sample.
func EncodeSample(sample int16) byte {
	return encodeSample(sample, G711)
}

// encodeSample compands sample using quantization q.
// The magnitude is held in an int so that -32768 can be negated.
func encodeSample(sample int16, q Quantization) byte {
	mag := int(sample)
	var sign byte
	if mag < 0 {
		sign = signBit
		mag = -mag
	}
	if mag > clip {
		mag = clip
	}
	mag += bias

	seg := segment(mag)

	var mant int
	if seg == 0 && q == Legacy {
		mant = (mag >> 4) & mantMask
	} else {
		mant = (mag >> (seg + 3)) & mantMask
	}

	code := byte(seg<<segShift) | byte(mant) | sign

	// Codes are stored inverted.
	return ^code
}

// segment returns the segment (0-7) of a clipped and biased magnitude.
// It is the position of the highest set bit of mag>>7, found with three
// mask tests rather than a loop.
func segment(mag int) int {
	val := mag >> 7
	var seg int
	if val&0xF0 != 0 {
		val >>= 4
		seg += 4
	}
	if val&0x0C != 0 {
		val >>= 2
		seg += 2
	}
	if val&0x02 != 0 {
		seg++
	}
	return seg
}

// Encode returns the mu-law codes of samples, one byte per sample in the same
// order. Encode of an empty slice returns an empty, non-nil slice.
func Encode(samples []int16) []byte {
	return encode(samples, G711)
}

// EncodeWith is Encode using quantization q.
func EncodeWith(samples []int16, q Quantization) []byte {
	return encode(samples, q)
}

func encode(samples []int16, q Quantization) []byte {
	codes := make([]byte, len(samples))
	for i, s := range samples {
		codes[i] = encodeSample(s, q)
	}
	return codes
}

// EncodeBytes takes 16-bit little-endian PCM and returns its mu-law codes.
// A dangling final byte is dropped.
func EncodeBytes(pcm []byte) []byte {
	codes := make([]byte, EncBytes(len(pcm)))
	for i := range codes {
		codes[i] = EncodeSample(int16(binary.LittleEndian.Uint16(pcm[i*byteDepth:])))
	}
	return codes
}

// EncBytes returns the number of mu-law bytes generated when encoding n bytes
// of 16-bit PCM.
func EncBytes(n int) int {
	return n / byteDepth
}
