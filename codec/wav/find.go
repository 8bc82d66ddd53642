/*
NAME
  find.go

DESCRIPTION
  find.go provides location of chunks in a RIFF/WAVE byte buffer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// NotFound is returned by Find when no chunk with the requested id exists.
const NotFound = -1

const (
	riffHeaderSize  = 12 // "RIFF", file size - 8, "WAVE".
	idSize          = 4
	sizeSize        = 4
	chunkHeaderSize = idSize + sizeSize
)

// Chunk ids used by this package.
var (
	DataID = [4]byte{'d', 'a', 't', 'a'}
	FmtID  = [4]byte{'f', 'm', 't', ' '}
)

var (
	ErrChunkNotFound    = errors.New("chunk not found")
	ErrTruncatedPayload = errors.New("chunk payload extends past end of buffer")
)

// Find returns the offset of the first occurrence of id after the 12 byte
// RIFF header of buf, or NotFound.
//
// Find does not walk the chunk structure; it compares id against every byte
// position, so sample data that happens to contain id will match. Positions
// are checked while i < len(buf)-4, which means the final 4 byte window of buf
// is never examined. This matches the previous wav2ulaw converter.
func Find(buf []byte, id [4]byte) int {
	for i := riffHeaderSize; i < len(buf)-idSize; i++ {
		if bytes.Equal(buf[i:i+idSize], id[:]) {
			return i
		}
	}
	return NotFound
}

// Payload returns the payload of the chunk whose id field starts at off.
// The payload length is read from the little-endian size field following the
// id. ErrChunkNotFound is returned if off is NotFound, and ErrTruncatedPayload
// if the header or declared payload does not fit in buf.
func Payload(buf []byte, off int) ([]byte, error) {
	if off == NotFound {
		return nil, ErrChunkNotFound
	}
	if off < 0 || off+chunkHeaderSize > len(buf) {
		return nil, fmt.Errorf("chunk header at %d: %w", off, ErrTruncatedPayload)
	}
	size := int64(binary.LittleEndian.Uint32(buf[off+idSize:]))
	start := int64(off + chunkHeaderSize)
	if start+size > int64(len(buf)) {
		return nil, fmt.Errorf("chunk at %d declares %d bytes, %d available: %w", off, size, int64(len(buf))-start, ErrTruncatedPayload)
	}
	return buf[start : start+size], nil
}
