/*
NAME
  pcm_test.go

DESCRIPTION
  pcm_test.go contains functions for testing the pcm package.

AUTHOR
  Trek Hopton <trek@ausocean.org>

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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mono(rate uint, s ...int16) Buffer {
	return Buffer{Format: BufferFormat{SFormat: S16_LE, Rate: rate, Channels: 1}, Data: Bytes(s)}
}

func stereo(rate uint, s ...int16) Buffer {
	return Buffer{Format: BufferFormat{SFormat: S16_LE, Rate: rate, Channels: 2}, Data: Bytes(s)}
}

// TestResample tests the Resample function for whole number and rational rate ratios.
func TestResample(t *testing.T) {
	tests := []struct {
		name string
		in   Buffer
		rate uint
		want []int16
	}{
		{name: "same rate", in: mono(8000, 1, 2, 3), rate: 8000, want: []int16{1, 2, 3}},
		{name: "decimate 6:1", in: mono(48000, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11), rate: 8000, want: []int16{2, 8}},
		{name: "decimate drops remainder", in: mono(48000, 0, 1, 2, 3, 4, 5, 6, 7), rate: 8000, want: []int16{2}},
		{name: "decimate negative", in: mono(16000, -10, -20, 10, 20), rate: 8000, want: []int16{-15, 15}},
		{name: "decimate stereo", in: stereo(16000, 0, 100, 2, 200, 4, 300, 6, 400), rate: 8000, want: []int16{1, 150, 5, 350}},
		{name: "interpolate 2:3", in: mono(8000, 0, 300, 600, 900), rate: 12000, want: []int16{0, 200, 400, 600, 800, 900}},
		{name: "interpolate stereo", in: stereo(8000, 0, 0, 300, -300), rate: 16000, want: []int16{0, 0, 150, -150, 300, -300, 300, -300}},
		{name: "interpolate empty", in: mono(44100), rate: 8000, want: []int16{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Resample(test.in, test.rate)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Format.Rate != test.rate {
				t.Errorf("rate = %d, want %d", got.Format.Rate, test.rate)
			}
			if got.Format.Channels != test.in.Format.Channels {
				t.Errorf("channels = %d, want %d", got.Format.Channels, test.in.Format.Channels)
			}
			if diff := cmp.Diff(test.want, Samples(got.Data)); diff != "" {
				t.Errorf("Resample() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestResampleLength checks the number of frames produced by a 44.1 kHz to 8 kHz conversion.
func TestResampleLength(t *testing.T) {
	got, err := Resample(mono(44100, make([]int16, 44100)...), 8000)
	if err != nil {
		t.Fatal(err)
	}
	if got.Frames() != 8000 {
		t.Errorf("got %d frames, want 8000", got.Frames())
	}
}

func TestResampleErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Buffer
		rate uint
	}{
		{name: "no input rate", in: mono(0, 1, 2), rate: 8000},
		{name: "no output rate", in: mono(8000, 1, 2), rate: 0},
		{name: "unknown format", in: Buffer{Format: BufferFormat{SFormat: Unknown, Rate: 16000, Channels: 1}, Data: []byte{0, 0}}, rate: 8000},
		{name: "no channels", in: Buffer{Format: BufferFormat{SFormat: S16_LE, Rate: 16000}, Data: []byte{0, 0}}, rate: 8000},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Resample(test.in, test.rate); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestStereoToMono tests that StereoToMono keeps only the left channel.
func TestStereoToMono(t *testing.T) {
	got, err := StereoToMono(stereo(8000, 1, -1, 2, -2, 3, -3))
	if err != nil {
		t.Fatal(err)
	}
	if got.Format.Channels != 1 || got.Format.Rate != 8000 {
		t.Errorf("unexpected format: %+v", got.Format)
	}
	if diff := cmp.Diff([]int16{1, 2, 3}, Samples(got.Data)); diff != "" {
		t.Errorf("StereoToMono() mismatch (-want +got):\n%s", diff)
	}

	// A partial trailing frame is dropped.
	b := stereo(8000, 5, 6)
	b.Data = append(b.Data, 7, 0)
	got, err = StereoToMono(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int16{5}, Samples(got.Data)); diff != "" {
		t.Errorf("StereoToMono() mismatch (-want +got):\n%s", diff)
	}

	b = mono(8000, 1, 2)
	got, err = StereoToMono(b)
	if err != nil || !cmp.Equal(got, b) {
		t.Errorf("mono input should be returned unchanged, got %v, %v", got, err)
	}

	_, err = StereoToMono(Buffer{Format: BufferFormat{SFormat: S16_LE, Channels: 3}})
	if err == nil {
		t.Error("expected error for 3 channels")
	}
}

func TestSamples(t *testing.T) {
	tests := []struct {
		in   []byte
		want []int16
	}{
		{in: nil, want: []int16{}},
		{in: []byte{0x01}, want: []int16{}},
		{in: []byte{0x00, 0x00, 0x34, 0x12}, want: []int16{0, 0x1234}},
		{in: []byte{0xff, 0xff, 0x00, 0x80, 0xff, 0x7f, 0x09}, want: []int16{-1, math.MinInt16, math.MaxInt16}},
	}
	for _, test := range tests {
		got := Samples(test.in)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Samples(%x) mismatch (-want +got):\n%s", test.in, diff)
		}
		if len(test.in) > 1 && !cmp.Equal(Bytes(got), test.in[:len(test.in)&^1]) {
			t.Errorf("Bytes(Samples(%x)) = %x", test.in, Bytes(got))
		}
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name string
		in   []int16
		want Level
	}{
		{name: "empty", in: nil, want: Level{}},
		{name: "silence", in: []int16{0, 0}, want: Level{}},
		{name: "small", in: []int16{3, -4}, want: Level{RMS: math.Sqrt(12.5), Peak: 4}},
		{name: "clipped", in: []int16{math.MaxInt16, math.MinInt16, 100, ClipLevel}, want: Level{RMS: math.Sqrt((32767.0*32767 + 32768.0*32768 + 100*100 + ClipLevel*ClipLevel) / 4), Peak: 32768, Clipped: 2}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Levels(test.in)
			if got.Peak != test.want.Peak || got.Clipped != test.want.Clipped || math.Abs(got.RMS-test.want.RMS) > 1e-9 {
				t.Errorf("Levels() = %+v, want %+v", got, test.want)
			}
		})
	}

	full := Levels([]int16{math.MinInt16, math.MinInt16})
	if db := full.DBFS(); math.Abs(db) > 1e-9 {
		t.Errorf("DBFS() of full scale = %v, want 0", db)
	}
	if db := (Level{}).DBFS(); !math.IsInf(db, -1) {
		t.Errorf("DBFS() of silence = %v, want -Inf", db)
	}
}

func TestSFFromString(t *testing.T) {
	for _, f := range []SampleFormat{S16_LE, S32_LE} {
		got, err := SFFromString(f.String())
		if err != nil || got != f {
			t.Errorf("SFFromString(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := SFFromString("U8"); err == nil {
		t.Error("expected error for unknown format")
	}
}
