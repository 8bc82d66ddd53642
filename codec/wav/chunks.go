/*
NAME
  chunks.go

DESCRIPTION
  chunks.go provides a Walker that iterates the chunks of a RIFF/WAVE buffer
  by following their declared sizes.

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
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

// Chunk describes a chunk of a RIFF buffer.
type Chunk struct {
	ID     [4]byte
	Offset int   // Offset of the chunk's id field.
	Size   int64 // Declared payload length, excluding any pad byte.
}

// PayloadOffset returns the offset of the first payload byte of c.
func (c Chunk) PayloadOffset() int { return c.Offset + chunkHeaderSize }

// End returns the offset one past the last declared payload byte of c.
func (c Chunk) End() int64 { return int64(c.PayloadOffset()) + c.Size }

func (c Chunk) String() string {
	return fmt.Sprintf("%q@%d+%d", c.ID[:], c.Offset, c.Size)
}

// Walker iterates over the chunks following the RIFF header of a buffer.
// Unlike Find it skips each payload, so sample data can never be mistaken for
// a chunk id. The RIFF and WAVE tags are not checked.
//
// A chunk whose payload overruns the buffer is still returned by Next, so the
// caller can report it, but iteration stops after it.
type Walker struct {
	buf  []byte
	r    *bytes.Reader
	p    *riff.Parser
	next int
	cur  Chunk
	done bool
	err  error
}

// NewWalker returns a Walker over buf.
func NewWalker(buf []byte) *Walker {
	r := bytes.NewReader(buf)
	return &Walker{buf: buf, r: r, p: riff.New(r), next: riffHeaderSize}
}

// Next advances to the next chunk, which is then available through Chunk.
// It returns false when no complete chunk header remains or an error occurs.
func (w *Walker) Next() bool {
	if w.done || w.next+chunkHeaderSize > len(w.buf) {
		w.done = true
		return false
	}

	_, err := w.r.Seek(int64(w.next), io.SeekStart)
	if err != nil {
		w.err = err
		w.done = true
		return false
	}
	id, size, err := w.p.IDnSize()
	if err != nil {
		w.err = fmt.Errorf("could not read chunk header at %d: %w", w.next, err)
		w.done = true
		return false
	}

	w.cur = Chunk{ID: id, Offset: w.next, Size: int64(size)}

	end := w.cur.End()
	if end > int64(len(w.buf)) {
		w.done = true
		return true
	}

	// Chunks are word aligned; odd sized payloads are followed by a pad byte.
	w.next = int(end + int64(size&1))
	return true
}

// Chunk returns the chunk found by the last call to Next.
func (w *Walker) Chunk() Chunk { return w.cur }

// Err returns the first error encountered while walking, if any.
func (w *Walker) Err() error { return w.err }

// Chunks returns every chunk found by walking buf.
func Chunks(buf []byte) ([]Chunk, error) {
	var chunks []Chunk
	w := NewWalker(buf)
	for w.Next() {
		chunks = append(chunks, w.Chunk())
	}
	return chunks, w.Err()
}

// Walk returns the first chunk with the given id found by walking buf.
func Walk(buf []byte, id [4]byte) (Chunk, error) {
	w := NewWalker(buf)
	for w.Next() {
		if w.Chunk().ID == id {
			return w.Chunk(), nil
		}
	}
	if w.Err() != nil {
		return Chunk{}, w.Err()
	}
	return Chunk{}, fmt.Errorf("%q: %w", id[:], ErrChunkNotFound)
}
