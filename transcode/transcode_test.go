/*
DESCRIPTION
  transcode_test.go provides testing of the wav to mu-law conversion pipeline.

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
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/ulaw/codec/pcm"
	"github.com/ausocean/ulaw/codec/ulaw"
	"github.com/ausocean/ulaw/codec/wav"
	"github.com/ausocean/ulaw/transcode/config"
)

// minimal is a RIFF header followed by a data chunk of two silent samples,
// with no fmt chunk.
var minimal = []byte{
	'R', 'I', 'F', 'F', 16, 0, 0, 0, 'W', 'A', 'V', 'E',
	'd', 'a', 't', 'a', 4, 0, 0, 0,
	0, 0, 0, 0,
}

// newTranscoder returns a Transcoder logging to t, configured with vars.
func newTranscoder(t *testing.T, vars map[string]string) *Transcoder {
	t.Helper()
	c := config.Config{Logger: (*testLogger)(t)}
	c.Update(vars)
	tc, err := New(c)
	if err != nil {
		t.Fatalf("could not create transcoder: %v", err)
	}
	return tc
}

// pcmWAV returns a 16-bit PCM wav file holding s.
func pcmWAV(t *testing.T, rate, channels int, s ...int16) []byte {
	t.Helper()
	w := &wav.WAV{Metadata: wav.Metadata{AudioFormat: wav.PCMFormat, Channels: channels, SampleRate: rate, BitDepth: 16}}
	_, err := w.Write(pcm.Bytes(s))
	if err != nil {
		t.Fatalf("could not write wav: %v", err)
	}
	return w.Audio
}

// extensibleWAV returns a wav file holding s with a 40 byte
// WAVE_FORMAT_EXTENSIBLE fmt chunk of the given subformat.
func extensibleWAV(rate, channels int, sub uint16, s ...int16) []byte {
	f := make([]byte, 40)
	binary.LittleEndian.PutUint16(f[0:], wav.ExtensibleFormat)
	binary.LittleEndian.PutUint16(f[2:], uint16(channels))
	binary.LittleEndian.PutUint32(f[4:], uint32(rate))
	binary.LittleEndian.PutUint32(f[8:], uint32(rate*channels*2))
	binary.LittleEndian.PutUint16(f[12:], uint16(channels*2))
	binary.LittleEndian.PutUint16(f[14:], 16)
	binary.LittleEndian.PutUint16(f[16:], 22) // Extension size.
	binary.LittleEndian.PutUint16(f[18:], 16) // Valid bits.
	binary.LittleEndian.PutUint16(f[24:], sub)
	copy(f[26:], "\x00\x00\x00\x00\x10\x00\x80\x00\x00\xaa\x00\x38\x9b\x71")

	data := pcm.Bytes(s)
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(4+8+len(f)+8+len(data)))
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(len(f)))
	b.Write(f)
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(data)))
	b.Write(data)
	return b.Bytes()
}

func TestNew(t *testing.T) {
	_, err := New(config.Config{})
	if err == nil {
		t.Error("expected error for config without logger")
	}

	tc := newTranscoder(t, nil)
	got := tc.Config()
	if got.Container != config.ContainerRaw || got.Workers != 1 || got.InputRate != 8000 || got.InputChannels != 1 {
		t.Errorf("unexpected defaults: %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	tc := newTranscoder(t, nil)
	err := tc.Update(map[string]string{"Container": "wav", "Workers": "0", "Quantization": "legacy"})
	if err != nil {
		t.Fatal(err)
	}
	got := tc.Config()
	if got.Container != config.ContainerWAV {
		t.Errorf("Container = %d, want %d", got.Container, config.ContainerWAV)
	}
	if got.Workers != 1 {
		t.Errorf("Workers = %d, want default of 1", got.Workers)
	}
	if got.Quantization != ulaw.Legacy {
		t.Errorf("Quantization = %v, want %v", got.Quantization, ulaw.Legacy)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		in      []byte
		wantOff int
		want    []byte
		wantFmt pcm.BufferFormat
	}{
		{
			name:    "minimal",
			in:      minimal,
			wantOff: 12,
			want:    []byte{0xff, 0xff},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 1},
		},
		{
			name:    "minimal scan",
			vars:    map[string]string{"Locate": "scan"},
			in:      minimal,
			wantOff: 12,
			want:    []byte{0xff, 0xff},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 1},
		},
		{
			name:    "minimal legacy",
			vars:    map[string]string{"Quantization": "legacy"},
			in:      minimal,
			wantOff: 12,
			want:    []byte{0xf7, 0xf7},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 1},
		},
		{
			name:    "assumed input format",
			vars:    map[string]string{"InputRate": "16000"},
			in:      minimal,
			wantOff: 12,
			want:    []byte{0xff, 0xff},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 16000, Channels: 1},
		},
		{
			name:    "vectors",
			in:      pcmWAV(t, 44100, 1, 0, 32635, -32635, -1, 1000, -1000, 32767, -32768),
			wantOff: 36,
			want:    []byte{0xff, 0x80, 0x00, 0x7f, 0xce, 0x4e, 0x80, 0x00},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 44100, Channels: 1},
		},
		{
			name:    "extensible pcm",
			in:      extensibleWAV(16000, 1, wav.PCMFormat, 0, 1000, -1000),
			wantOff: 60,
			want:    []byte{0xff, 0xce, 0x4e},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 16000, Channels: 1},
		},
		{
			name:    "stereo",
			in:      pcmWAV(t, 8000, 2, 1000, -1000, 0, 8000),
			wantOff: 36,
			want:    []byte{0xce, 0x4e, 0xff, 0xa0},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 2},
		},
		{
			name:    "mono",
			vars:    map[string]string{"Mono": "true"},
			in:      pcmWAV(t, 8000, 2, 1000, -1000, 0, 8000),
			wantOff: 36,
			want:    []byte{0xce, 0xff},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 1},
		},
		{
			name:    "gain",
			vars:    map[string]string{"Gain": "2"},
			in:      pcmWAV(t, 8000, 1, 1000, -1000),
			wantOff: 36,
			want:    []byte{ulaw.EncodeSample(2000), ulaw.EncodeSample(-2000)},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 1},
		},
		{
			name:    "odd byte dropped",
			in:      append(append([]byte{}, minimal[:4]...), append([]byte{17, 0, 0, 0, 'W', 'A', 'V', 'E', 'd', 'a', 't', 'a', 5, 0, 0, 0, 0xe8, 0x03, 0x18, 0xfc, 0x01}, 0)...),
			wantOff: 12,
			want:    []byte{0xce, 0x4e},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 1},
		},
		{
			name:    "empty data",
			in:      pcmWAV(t, 8000, 1),
			wantOff: 36,
			want:    []byte{},
			wantFmt: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: 8000, Channels: 1},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tc := newTranscoder(t, test.vars)
			in := append([]byte{}, test.in...)
			res, err := tc.Convert(in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(in, test.in) {
				t.Error("input was modified")
			}
			if res.Offset != test.wantOff {
				t.Errorf("Offset = %d, want %d", res.Offset, test.wantOff)
			}
			if diff := cmp.Diff(test.want, res.Codes); diff != "" {
				t.Errorf("Codes mismatch (-want +got):\n%s", diff)
			}
			if !bytes.Equal(res.Output, res.Codes) {
				t.Errorf("raw Output = %x, want %x", res.Output, res.Codes)
			}
			if res.Format != test.wantFmt {
				t.Errorf("Format = %+v, want %+v", res.Format, test.wantFmt)
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	mulaw := &wav.WAV{Metadata: wav.Metadata{AudioFormat: wav.MuLawFormat, Channels: 1, SampleRate: 8000, BitDepth: 8}}
	_, err := mulaw.Write([]byte{0xff, 0xff})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		vars    map[string]string
		in      []byte
		wantErr error
	}{
		{name: "empty", in: nil, wantErr: wav.ErrChunkNotFound},
		{name: "ten bytes", in: minimal[:10], wantErr: wav.ErrChunkNotFound},
		{name: "ten bytes scan", vars: map[string]string{"Locate": "scan"}, in: minimal[:10], wantErr: wav.ErrChunkNotFound},
		{name: "truncated", in: minimal[:22], wantErr: wav.ErrTruncatedPayload},
		{name: "truncated scan", vars: map[string]string{"Locate": "scan"}, in: minimal[:22], wantErr: wav.ErrTruncatedPayload},
		{name: "mu-law input", in: mulaw.Audio, wantErr: ErrUnsupportedFormat},
		{name: "extensible float", in: extensibleWAV(8000, 1, 3, 0, 0), wantErr: ErrUnsupportedFormat},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := newTranscoder(t, test.vars).Convert(test.in)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, test.wantErr)
			}
			if res != nil {
				t.Errorf("expected no result, got %+v", res)
			}
		})
	}
}

// TestConvertLocate checks that walking the chunk list skips a data pattern
// inside another chunk, where scanning does not.
func TestConvertLocate(t *testing.T) {
	in := []byte{
		'R', 'I', 'F', 'F', 30, 0, 0, 0, 'W', 'A', 'V', 'E',
		'J', 'U', 'N', 'K', 8, 0, 0, 0,
		'd', 'a', 't', 'a', 2, 0, 0, 0,
		'd', 'a', 't', 'a', 2, 0, 0, 0,
		0xe8, 0x03,
	}

	res, err := newTranscoder(t, nil).Convert(in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Offset != 28 || !bytes.Equal(res.Codes, []byte{0xce}) {
		t.Errorf("walk: offset %d codes %x, want 28 [ce]", res.Offset, res.Codes)
	}

	res, err = newTranscoder(t, map[string]string{"Locate": "scan"}).Convert(in)
	if err != nil {
		t.Fatal(err)
	}
	want := ulaw.Encode(pcm.Samples([]byte("da")))
	if res.Offset != 20 || !bytes.Equal(res.Codes, want) {
		t.Errorf("scan: offset %d codes %x, want 20 %x", res.Offset, res.Codes, want)
	}
}

func TestConvertWAVContainer(t *testing.T) {
	tc := newTranscoder(t, map[string]string{"Container": "wav"})
	res, err := tc.Convert(pcmWAV(t, 16000, 1, 0, 1000, -1000))
	if err != nil {
		t.Fatal(err)
	}

	info, err := wav.Probe(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	if info.AudioFormat != wav.MuLawFormat || info.BitDepth != 8 || info.SampleRate != 16000 || info.NumChannels != 1 {
		t.Errorf("unexpected output format: %v", info)
	}
	data, err := wav.PCM(res.Output, wav.LocateWalk)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xff, 0xce, 0x4e}, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertResample(t *testing.T) {
	s := make([]int16, 1600)
	for i := range s {
		s[i] = int16(i % 100 * 100)
	}
	in := pcmWAV(t, 16000, 1, s...)

	for _, aa := range []string{"false", "true"} {
		t.Run("antialias "+aa, func(t *testing.T) {
			tc := newTranscoder(t, map[string]string{"SampleRate": "8000", "AntiAlias": aa, "FilterTaps": "32"})
			res, err := tc.Convert(in)
			if err != nil {
				t.Fatal(err)
			}
			if res.Format.Rate != 8000 {
				t.Errorf("rate = %d, want 8000", res.Format.Rate)
			}
			if len(res.Codes) != 800 {
				t.Errorf("got %d codes, want 800", len(res.Codes))
			}
		})
	}

	res, err := newTranscoder(t, map[string]string{"SampleRate": "8000", "AntiAlias": "true"}).Convert(minimal)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(res.Codes, []byte{0xff, 0xff}) {
		t.Errorf("codes = %x, want ffff", res.Codes)
	}
}

func TestConvertHighPass(t *testing.T) {
	// A constant offset is removed by the highpass filter.
	const taps = 512
	s := make([]int16, 4000)
	for i := range s {
		s[i] = 4000
	}
	res, err := newTranscoder(t, map[string]string{"HighPass": "300", "FilterTaps": "512"}).Convert(pcmWAV(t, 8000, 1, s...))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Codes) != len(s) {
		t.Fatalf("got %d codes, want %d", len(res.Codes), len(s))
	}

	quiet := make(map[byte]bool)
	for v := -16; v <= 16; v++ {
		quiet[ulaw.EncodeSample(int16(v))] = true
	}
	for i := taps; i < len(s)-taps; i++ {
		if !quiet[res.Codes[i]] {
			t.Fatalf("code %d = %#x, want near silence", i, res.Codes[i])
		}
	}
}

func TestConvertParallel(t *testing.T) {
	s := make([]int16, 20000)
	for i := range s {
		s[i] = int16(i*7919 - 32768)
	}
	in := pcmWAV(t, 8000, 1, s...)

	serial, err := newTranscoder(t, nil).Convert(in)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := newTranscoder(t, map[string]string{"Workers": "4"}).Convert(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(serial.Codes, parallel.Codes) {
		t.Error("parallel encoding differs from serial encoding")
	}
	if !bytes.Equal(serial.Codes, ulaw.Encode(s)) {
		t.Error("serial encoding differs from Encode")
	}
}

func TestConvertTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.txt")
	tc := newTranscoder(t, map[string]string{"TracePath": path})
	res, err := tc.Convert(pcmWAV(t, 8000, 1, 0, -1, 1000))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0xff, 0x7f, 0xce}, res.Codes); diff != "" {
		t.Errorf("Codes mismatch (-want +got):\n%s", diff)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	want := []string{"0 0 0xff", "1 -1 0x7f", "2 1000 0xce"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

// closeFailer accepts writes but fails to close, as a file on a full disk can.
type closeFailer struct{ bytes.Buffer }

var errClose = errors.New("close failed")

func (*closeFailer) Close() error { return errClose }

func TestConvertTraceCloseError(t *testing.T) {
	tc := newTranscoder(t, map[string]string{"TracePath": "trace.txt"})
	trace := &closeFailer{}
	tc.createTrace = func(string) (io.WriteCloser, error) { return trace, nil }

	res, err := tc.Convert(pcmWAV(t, 8000, 1, 0, -1))
	if !errors.Is(err, errClose) {
		t.Errorf("Convert() error = %v, want %v", err, errClose)
	}
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}
	if trace.String() != "0 0 0xff\n1 -1 0x7f\n" {
		t.Errorf("unexpected trace %q", trace.String())
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.ul")
	err := os.WriteFile(in, minimal, 0644)
	if err != nil {
		t.Fatal(err)
	}

	tc := newTranscoder(t, nil)
	err = tc.ConvertFile(in, out)
	if err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xff, 0xff}) {
		t.Errorf("output = %x, want ffff", got)
	}

	err = tc.ConvertFile(filepath.Join(dir, "missing.wav"), out)
	if err == nil {
		t.Error("expected error for missing input")
	}

	short := filepath.Join(dir, "short.wav")
	err = os.WriteFile(short, minimal[:10], 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = tc.ConvertFile(short, filepath.Join(dir, "short.ul"))
	if !errors.Is(err, wav.ErrChunkNotFound) {
		t.Errorf("ConvertFile() error = %v, want %v", err, wav.ErrChunkNotFound)
	}
	_, err = os.Stat(filepath.Join(dir, "short.ul"))
	if !os.IsNotExist(err) {
		t.Error("output written for failed conversion")
	}
}

func TestTraceWriteError(t *testing.T) {
	tr := NewTrace(failWriter{})
	for i := 0; i < 5000; i++ {
		tr.Observe(i, 0, 0xff)
	}
	if err := tr.Flush(); err == nil {
		t.Error("expected error from failing writer")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }
