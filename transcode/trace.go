/*
NAME
  trace.go

DESCRIPTION
  trace.go provides a mu-law encoder observer that records every encoded
  sample.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transcode

import (
	"bufio"
	"fmt"
	"io"
)

// Trace is a ulaw.Observer that writes a line "index sample code" for each
// encoded sample, with the code in hex. The first write error stops the trace
// and is returned by Flush.
type Trace struct {
	w   *bufio.Writer
	err error
}

// NewTrace returns a Trace writing to w. Flush must be called once encoding
// is complete.
func NewTrace(w io.Writer) *Trace {
	return &Trace{w: bufio.NewWriter(w)}
}

// Observe implements ulaw.Observer.
func (t *Trace) Observe(idx int, sample int16, code byte) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%d %d 0x%02x\n", idx, sample, code)
}

// Flush writes any buffered lines and returns the first error encountered.
func (t *Trace) Flush() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}
