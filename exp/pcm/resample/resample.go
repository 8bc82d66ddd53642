/*
NAME
  resample.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package resample is a command-line program for resampling a 16-bit wav file,
// optionally downmixing it to mono.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ausocean/ulaw/codec/pcm"
	"github.com/ausocean/ulaw/codec/wav"
)

// This program accepts an input wav file and outputs a resampled wav file.
// The input format is read from its fmt chunk.
func main() {
	var (
		inPath  = flag.String("in", "data.wav", "file path of input data")
		outPath = flag.String("out", "resampled.wav", "file path of output")
		to      = flag.Uint("to", 8000, "sample rate of output file")
		mono    = flag.Bool("mono", false, "keep only the left channel of stereo input")
		taps    = flag.Int("taps", 64, "anti-aliasing filter length, 0 disables the filter")
	)
	flag.Parse()

	in, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Read", len(in), "bytes from file", *inPath)

	info, err := wav.Probe(in)
	if err != nil {
		log.Fatal(err)
	}
	if !info.IsPCM16() {
		log.Fatalf("unsupported input: %v", info)
	}
	data, err := wav.PCM(in, wav.LocateWalk)
	if err != nil {
		log.Fatal(err)
	}

	buf := pcm.Buffer{
		Format: pcm.BufferFormat{
			Channels: uint(info.NumChannels),
			Rate:     uint(info.SampleRate),
			SFormat:  pcm.S16_LE,
		},
		Data: data,
	}

	if *mono && buf.Format.Channels == 2 {
		buf, err = pcm.StereoToMono(buf)
		if err != nil {
			log.Fatal(err)
		}
	}

	if *taps > 0 {
		buf, err = pcm.AntiAlias(buf, *to, *taps)
		if err != nil {
			log.Fatal(err)
		}
	}
	resampled, err := pcm.Resample(buf, *to)
	if err != nil {
		log.Fatal(err)
	}

	out := &wav.WAV{
		Metadata: wav.Metadata{
			AudioFormat: wav.PCMFormat,
			Channels:    int(resampled.Format.Channels),
			SampleRate:  int(resampled.Format.Rate),
			BitDepth:    16,
		},
	}
	_, err = out.Write(resampled.Data)
	if err != nil {
		log.Fatal(err)
	}
	err = os.WriteFile(*outPath, out.Audio, 0644)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Resampled and wrote", len(out.Audio), "bytes to file", *outPath)
}
