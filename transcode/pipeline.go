/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go holds the stages of a conversion: data chunk extraction, format
  discovery, pcm processing, mu-law encoding and output packaging.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transcode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/ulaw/codec/pcm"
	"github.com/ausocean/ulaw/codec/ulaw"
	"github.com/ausocean/ulaw/codec/wav"
	"github.com/ausocean/ulaw/transcode/config"
)

// Convert converts the RIFF/WAVE buffer buf to mu-law. buf is not modified.
// A buffer without a data chunk gives an error wrapping wav.ErrChunkNotFound,
// one whose data chunk runs past its end wav.ErrTruncatedPayload.
func (t *Transcoder) Convert(buf []byte) (*Result, error) {
	off, data, err := wav.Extract(buf, wav.DataID, t.cfg.Locate)
	if err != nil {
		return nil, fmt.Errorf("could not extract data chunk: %w", err)
	}
	t.cfg.Logger.Debug("found data chunk", "offset", off, "size", len(data), "locate", t.cfg.Locate)

	info, err := t.sourceFormat(buf)
	if err != nil {
		return nil, err
	}
	b := pcm.Buffer{
		Format: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: t.cfg.InputRate, Channels: t.cfg.InputChannels},
		Data:   data,
	}
	if info.Found {
		b.Format.Rate = uint(info.SampleRate)
		b.Format.Channels = uint(info.NumChannels)
	}

	b, err = t.process(b)
	if err != nil {
		return nil, err
	}

	samples := pcm.Samples(b.Data)
	lvl := pcm.Levels(samples)
	t.cfg.Logger.Debug("pcm level", "rms dBFS", lvl.DBFS(), "peak", lvl.Peak, "samples", len(samples))
	if lvl.Clipped != 0 {
		t.cfg.Logger.Warning("samples clipped by mu-law encoding", "clipped", lvl.Clipped)
	}

	codes, err := t.encode(b.Data, samples)
	if err != nil {
		return nil, err
	}

	out, err := t.pack(codes, b.Format)
	if err != nil {
		return nil, err
	}

	return &Result{
		Offset: off,
		Source: info,
		Format: b.Format,
		Level:  lvl,
		Codes:  codes,
		Output: out,
	}, nil
}

// sourceFormat probes the fmt chunk of buf. Inputs with no fmt chunk, or one
// that cannot be read, are assumed to be in the configured input format.
func (t *Transcoder) sourceFormat(buf []byte) (wav.Info, error) {
	info, err := wav.Probe(buf)
	switch {
	case err != nil:
		t.cfg.Logger.Warning("could not read fmt chunk, assuming input format", "error", err, "rate", t.cfg.InputRate, "channels", t.cfg.InputChannels)
		return wav.Info{}, nil
	case !info.Found:
		t.cfg.Logger.Debug("no fmt chunk, assuming input format", "rate", t.cfg.InputRate, "channels", t.cfg.InputChannels)
		return info, nil
	case !info.IsPCM16() || info.SampleRate < 1:
		return info, fmt.Errorf("%w: %v", ErrUnsupportedFormat, info)
	}
	t.cfg.Logger.Debug("read fmt chunk", "format", info)
	return info, nil
}

// process applies the configured pcm stages to b: channel reduction, highpass
// filtering, anti-aliasing and resampling, and gain. Only whole frames of b are
// kept.
func (t *Transcoder) process(b pcm.Buffer) (pcm.Buffer, error) {
	frames := b.Frames()
	b.Data = b.Data[:frames*2*int(b.Format.Channels)]

	var err error
	if t.cfg.Mono && b.Format.Channels > 1 {
		b, err = pcm.StereoToMono(b)
		if err != nil {
			return b, errors.Wrap(err, "could not convert to mono")
		}
		t.cfg.Logger.Debug("converted to mono")
	}

	if len(b.Data) == 0 {
		return b, nil
	}

	if t.cfg.HighPass != 0 {
		hp, err := pcm.NewHighPass(t.cfg.HighPass, b.Format, int(t.cfg.FilterTaps))
		if err != nil {
			return b, errors.Wrap(err, "could not create highpass filter")
		}
		filtered, err := hp.Apply(b)
		if err != nil {
			return b, errors.Wrap(err, "could not apply highpass filter")
		}
		b.Data = hp.Align(filtered, b.Frames(), int(b.Format.Channels))
		t.cfg.Logger.Debug("applied highpass filter", "cutoff", t.cfg.HighPass)
	}

	if t.cfg.SampleRate != 0 && t.cfg.SampleRate != b.Format.Rate {
		if t.cfg.AntiAlias {
			b, err = pcm.AntiAlias(b, t.cfg.SampleRate, int(t.cfg.FilterTaps))
			if err != nil {
				return b, errors.Wrap(err, "could not anti-alias")
			}
		}
		from := b.Format.Rate
		b, err = pcm.Resample(b, t.cfg.SampleRate)
		if err != nil {
			return b, errors.Wrap(err, "could not resample")
		}
		t.cfg.Logger.Debug("resampled", "from", from, "to", b.Format.Rate, "antialias", t.cfg.AntiAlias)
	}

	if t.cfg.Gain != 1 && len(b.Data) != 0 {
		b.Data, err = pcm.NewAmplifier(t.cfg.Gain).Apply(b)
		if err != nil {
			return b, errors.Wrap(err, "could not amplify")
		}
		t.cfg.Logger.Debug("amplified", "gain", t.cfg.Gain)
	}
	return b, nil
}

// encode compands the pcm in b, whose samples are also given as samples. With a
// trace path set the streaming encoder is used so every sample can be observed;
// otherwise samples are encoded on the configured number of workers.
func (t *Transcoder) encode(b []byte, samples []int16) ([]byte, error) {
	if t.cfg.TracePath == "" {
		if t.cfg.Workers > 1 {
			return ulaw.EncodeParallel(samples, int(t.cfg.Workers), t.cfg.Quantization), nil
		}
		return ulaw.EncodeWith(samples, t.cfg.Quantization), nil
	}

	f, err := t.createTrace(t.cfg.TracePath)
	if err != nil {
		return nil, errors.Wrap(err, "could not create trace file")
	}
	codes, err := t.encodeTraced(f, b)
	cerr := f.Close()
	if err != nil {
		return nil, err
	}
	if cerr != nil {
		return nil, errors.Wrap(cerr, "could not close trace file")
	}
	return codes, nil
}

// encodeTraced compands the pcm in b with the streaming encoder, writing a
// line per sample to w.
func (t *Transcoder) encodeTraced(w io.Writer, b []byte) ([]byte, error) {
	tr := NewTrace(w)
	var out bytes.Buffer
	out.Grow(ulaw.EncBytes(len(b)))
	enc, err := ulaw.NewEncoder(&out, ulaw.WithQuantization(t.cfg.Quantization), ulaw.WithObserver(tr))
	if err != nil {
		return nil, errors.Wrap(err, "could not create encoder")
	}
	_, err = enc.Write(b)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode")
	}
	err = tr.Flush()
	if err != nil {
		return nil, errors.Wrap(err, "could not write trace")
	}
	t.cfg.Logger.Debug("wrote trace", "path", t.cfg.TracePath, "samples", enc.Samples())
	return out.Bytes(), nil
}

// pack places codes in the configured container.
func (t *Transcoder) pack(codes []byte, f pcm.BufferFormat) ([]byte, error) {
	if t.cfg.Container != config.ContainerWAV {
		return codes, nil
	}
	w := &wav.WAV{
		Metadata: wav.Metadata{
			AudioFormat: wav.MuLawFormat,
			Channels:    int(f.Channels),
			SampleRate:  int(f.Rate),
			BitDepth:    8,
		},
	}
	_, err := w.Write(codes)
	if err != nil {
		return nil, errors.Wrap(err, "could not write wav container")
	}
	return w.Audio, nil
}
