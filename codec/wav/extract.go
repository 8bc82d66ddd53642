/*
NAME
  extract.go

DESCRIPTION
  extract.go provides extraction of chunk payloads, in particular the PCM in
  the data chunk, from a RIFF/WAVE byte buffer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package wav

import (
	"fmt"
	"strings"
)

// Locate selects how a chunk is located in a buffer.
type Locate int

const (
	// LocateWalk follows the declared chunk sizes from the end of the RIFF header.
	LocateWalk Locate = iota

	// LocateScan uses Find, reproducing the byte scan of the previous
	// wav2ulaw converter including its false positives and end bound.
	LocateScan
)

// String returns the string representation of a Locate.
func (l Locate) String() string {
	switch l {
	case LocateWalk:
		return "walk"
	case LocateScan:
		return "scan"
	default:
		return "unknown"
	}
}

// LocateFromString returns the Locate named by s.
func LocateFromString(s string) (Locate, error) {
	switch strings.ToLower(s) {
	case "walk":
		return LocateWalk, nil
	case "scan":
		return LocateScan, nil
	default:
		return LocateWalk, fmt.Errorf("unknown locate mode (%s)", s)
	}
}

// Extract locates the chunk with the given id in buf using mode and returns
// its offset and payload. Errors wrap ErrChunkNotFound or ErrTruncatedPayload.
func Extract(buf []byte, id [4]byte, mode Locate) (int, []byte, error) {
	var off int
	switch mode {
	case LocateScan:
		off = Find(buf, id)
	case LocateWalk:
		c, err := Walk(buf, id)
		if err != nil {
			return NotFound, nil, err
		}
		off = c.Offset
	default:
		return NotFound, nil, fmt.Errorf("invalid locate mode: %d", mode)
	}

	if off == NotFound {
		return NotFound, nil, fmt.Errorf("%q: %w", id[:], ErrChunkNotFound)
	}
	p, err := Payload(buf, off)
	if err != nil {
		return off, nil, fmt.Errorf("%q: %w", id[:], err)
	}
	return off, p, nil
}

// PCM returns the payload of the data chunk of buf, located using mode.
func PCM(buf []byte, mode Locate) ([]byte, error) {
	_, p, err := Extract(buf, DataID, mode)
	return p, err
}
