/*
NAME
  encoder.go

DESCRIPTION
  encoder.go provides a streaming mu-law Encoder that writes codes to an
  io.Writer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ulaw

import (
	"encoding/binary"
	"errors"
	"io"
)

// Observer is notified of every sample an Encoder encodes.
// Observers must not retain or modify anything; they exist for diagnostics
// and never affect the encoded output.
type Observer interface {
	Observe(idx int, sample int16, code byte)
}

// ObserverFunc is an adapter allowing an ordinary function to be used as an
// Observer.
type ObserverFunc func(idx int, sample int16, code byte)

// Observe calls f(idx, sample, code).
func (f ObserverFunc) Observe(idx int, sample int16, code byte) { f(idx, sample, code) }

// Encoder is used to encode to mu-law from 16-bit little-endian PCM data.
type Encoder struct {
	// dst is the destination for mu-law encoded data.
	dst io.Writer

	q   Quantization
	obs Observer

	idx     int     // Index of the next sample to be encoded.
	odd     bool    // True if half a sample is held over from the last Write.
	half    byte    // The held over low byte.
	buf     []byte  // Scratch space for encoded output.
	samples []int16 // Samples of buf, kept only when there is an observer.
}

// WithQuantization is an option that can be passed to NewEncoder to select the
// segment 0 quantization. The default is G711.
func WithQuantization(q Quantization) func(*Encoder) error {
	return func(e *Encoder) error {
		switch q {
		case G711, Legacy:
			e.q = q
			return nil
		default:
			return errors.New("invalid quantization")
		}
	}
}

// WithObserver is an option that can be passed to NewEncoder so that o is
// called for every encoded sample.
func WithObserver(o Observer) func(*Encoder) error {
	return func(e *Encoder) error {
		if o == nil {
			return errors.New("nil observer")
		}
		e.obs = o
		return nil
	}
}

// NewEncoder returns a new mu-law Encoder writing to dst.
func NewEncoder(dst io.Writer, options ...func(*Encoder) error) (*Encoder, error) {
	e := &Encoder{dst: dst}
	for _, opt := range options {
		err := opt(e)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Write takes a slice of bytes of arbitrary length representing 16-bit
// little-endian PCM, encodes it to mu-law and writes the codes to the
// Encoder's dst. A sample split across two calls to Write is joined; a final
// odd byte that is never completed is dropped.
// Write returns the number of bytes of b consumed, which is len(b) unless the
// destination returns an error. On error the Encoder is left as it was before
// the call and no samples are reported to the observer, so b may be written
// again.
func (e *Encoder) Write(b []byte) (int, error) {
	n := len(b)
	if n == 0 {
		return 0, nil
	}

	e.buf = e.buf[:0]
	e.samples = e.samples[:0]
	odd, half := e.odd, e.half
	if odd {
		e.add(int16(uint16(half) | uint16(b[0])<<8))
		odd = false
		b = b[1:]
	}
	for len(b) >= byteDepth {
		e.add(int16(binary.LittleEndian.Uint16(b)))
		b = b[byteDepth:]
	}
	if len(b) == 1 {
		half = b[0]
		odd = true
	}

	_, err := e.dst.Write(e.buf)
	if err != nil {
		return 0, err
	}

	if e.obs != nil {
		for i, s := range e.samples {
			e.obs.Observe(e.idx+i, s, e.buf[i])
		}
	}
	e.idx += len(e.buf)
	e.odd, e.half = odd, half
	return n, nil
}

// Samples returns the number of samples encoded so far.
func (e *Encoder) Samples() int { return e.idx }

// add encodes s into the scratch output, keeping s for the observer.
func (e *Encoder) add(s int16) {
	e.buf = append(e.buf, encodeSample(s, e.q))
	if e.obs != nil {
		e.samples = append(e.samples, s)
	}
}
