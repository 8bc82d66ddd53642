/*
NAME
  levels.go

DESCRIPTION
  levels.go measures the signal level of pcm samples.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pcm

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ClipLevel is the largest magnitude a mu-law encoder represents; samples
// beyond it are clipped.
const ClipLevel = 32635

// fullScale is the magnitude of the most negative 16-bit sample.
const fullScale = math.MaxInt16 + 1

// Level summarises the loudness of a run of samples.
type Level struct {
	RMS     float64 // Root mean square, in sample units.
	Peak    int     // Largest magnitude.
	Clipped int     // Number of samples with magnitude above ClipLevel.
}

// DBFS returns the RMS level relative to full scale, in decibels. Silence
// is -Inf.
func (l Level) DBFS() float64 {
	return 20 * math.Log10(l.RMS/fullScale)
}

// Levels returns the level of s. An empty s has a zero Level.
func Levels(s []int16) Level {
	if len(s) == 0 {
		return Level{}
	}

	f := make([]float64, len(s))
	var clipped int
	for i, v := range s {
		f[i] = float64(v)
		if math.Abs(f[i]) > ClipLevel {
			clipped++
		}
	}
	peak := math.Max(floats.Max(f), -floats.Min(f))

	floats.Mul(f, f)
	return Level{
		RMS:     math.Sqrt(stat.Mean(f, nil)),
		Peak:    int(peak),
		Clipped: clipped,
	}
}
