/*
NAME
  parallel.go

DESCRIPTION
  parallel.go provides concurrent mu-law encoding of large sample slices.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ulaw

import "golang.org/x/sync/errgroup"

// minBlock is the smallest number of samples given to a single goroutine.
const minBlock = 4096

// EncodeParallel is EncodeWith split over at most workers goroutines, each
// encoding a contiguous block of samples. The result is identical to
// EncodeWith(samples, q). A workers value below 2 encodes on the calling
// goroutine.
func EncodeParallel(samples []int16, workers int, q Quantization) []byte {
	if workers < 2 || len(samples) <= minBlock {
		return encode(samples, q)
	}

	block := (len(samples) + workers - 1) / workers
	if block < minBlock {
		block = minBlock
	}

	codes := make([]byte, len(samples))
	var g errgroup.Group
	g.SetLimit(workers)
	for off := 0; off < len(samples); off += block {
		end := off + block
		if end > len(samples) {
			end = len(samples)
		}
		src, dst := samples[off:end], codes[off:end]
		g.Go(func() error {
			for i, s := range src {
				dst[i] = encodeSample(s, q)
			}
			return nil
		})
	}
	g.Wait() // Blocks never fail.
	return codes
}
