/*
NAME
  main.go

DESCRIPTION
  ulaw-curve plots the mu-law code produced for each 16-bit sample value
  over a range, for both segment 0 quantizations.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ulaw-curve is a command-line program for plotting the mu-law
// companding curve to a PNG or SVG file.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/ulaw/codec/ulaw"
)

func main() {
	var (
		outPath = flag.String("out", "ulaw.png", "file path of output plot, the extension selects the format")
		from    = flag.Int("from", math.MinInt16, "first sample value")
		to      = flag.Int("to", math.MaxInt16, "last sample value")
		step    = flag.Int("step", 16, "sample value step")
	)
	flag.Parse()

	if *from < math.MinInt16 || *to > math.MaxInt16 || *from >= *to || *step < 1 {
		log.Fatalf("bad range %d to %d step %d", *from, *to, *step)
	}

	p := plot.New()
	p.Title.Text = "mu-law companding"
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "code"

	colours := map[ulaw.Quantization]color.Color{
		ulaw.G711:   color.RGBA{B: 255, A: 255},
		ulaw.Legacy: color.RGBA{R: 255, A: 255},
	}
	for _, q := range []ulaw.Quantization{ulaw.G711, ulaw.Legacy} {
		l, err := plotter.NewLine(curve(*from, *to, *step, q))
		if err != nil {
			log.Fatalf("could not create line: %v", err)
		}
		l.Color = colours[q]
		p.Add(l)
		p.Legend.Add(q.String(), l)
	}

	err := p.Save(8*vg.Inch, 6*vg.Inch, *outPath)
	if err != nil {
		log.Fatalf("could not save plot: %v", err)
	}
	fmt.Println("wrote plot to", *outPath)
}

// curve returns the code for every step'th sample from from to to inclusive.
func curve(from, to, step int, q ulaw.Quantization) plotter.XYs {
	var s []int16
	for v := from; v <= to; v += step {
		s = append(s, int16(v))
	}
	codes := ulaw.EncodeWith(s, q)
	xys := make(plotter.XYs, len(s))
	for i := range s {
		xys[i].X = float64(s[i])
		xys[i].Y = float64(codes[i])
	}
	return xys
}
