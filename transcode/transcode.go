/*
NAME
  transcode.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package transcode provides an API for converting RIFF/WAVE 16-bit PCM audio
// to G.711 mu-law, for single files or a watched directory.
package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ausocean/ulaw/codec/pcm"
	"github.com/ausocean/ulaw/codec/wav"
	"github.com/ausocean/ulaw/transcode/config"
)

// ErrUnsupportedFormat is returned when the fmt chunk of the input describes
// audio other than 16-bit linear PCM.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// defaultSettle is how long a watched file must go unmodified before it is
// converted.
const defaultSettle = 500 * time.Millisecond

// Transcoder converts wav audio to mu-law according to its Config.
// Update must not be called while a conversion is in progress.
type Transcoder struct {
	// cfg holds the Transcoder configuration, including the logger.
	cfg config.Config

	// settle is the quiet period applied to files in Watch.
	settle time.Duration

	// createTrace opens the trace file named by the config.
	createTrace func(name string) (io.WriteCloser, error)
}

// Result holds the outcome of a conversion.
type Result struct {
	// Offset is the offset of the data chunk header in the input.
	Offset int

	// Source describes the fmt chunk of the input. Source.Found is false if
	// the input had none and the configured input format was assumed.
	Source wav.Info

	// Format is the format of the encoded audio. SFormat describes the PCM
	// that was encoded.
	Format pcm.BufferFormat

	// Level is the level of the PCM that was encoded.
	Level pcm.Level

	// Codes holds one mu-law code per encoded sample, in temporal order.
	Codes []byte

	// Output holds Codes in the configured container, ready to be written.
	Output []byte
}

// New returns a pointer to a new Transcoder with the desired configuration, and/or
// an error if construction of the new instance was not successful.
func New(c config.Config) (*Transcoder, error) {
	t := Transcoder{settle: defaultSettle, createTrace: createFile}
	err := t.setConfig(c)
	if err != nil {
		return nil, fmt.Errorf("could not set config, failed with error: %w", err)
	}
	return &t, nil
}

// Config returns a copy of the Transcoder's current config.
func (t *Transcoder) Config() config.Config {
	return t.cfg
}

// Update takes a map of variables and their values and edits the current config
// if the variables are recognised as valid parameters.
func (t *Transcoder) Update(vars map[string]string) error {
	t.cfg.Logger.Debug("checking vars", "vars", vars)
	c := t.cfg
	c.Update(vars)
	err := t.setConfig(c)
	if err != nil {
		return err
	}
	t.cfg.Logger.Info("finished reconfig")
	return nil
}

// setConfig takes a config, checks it's validity and then replaces the current
// config.
func (t *Transcoder) setConfig(c config.Config) error {
	if c.Logger == nil {
		return errors.New("config has no logger")
	}
	c.Logger.Debug("validating config")
	err := c.Validate()
	if err != nil {
		return errors.New("config struct is bad: " + err.Error())
	}
	c.Logger.Info("config validated")
	t.cfg = c
	t.cfg.Logger.SetLevel(t.cfg.LogLevel)
	return nil
}

func createFile(name string) (io.WriteCloser, error) { return os.Create(name) }

// ConvertFile converts the wav file at in and writes the result to out.
func (t *Transcoder) ConvertFile(in, out string) error {
	buf, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("could not read input: %w", err)
	}

	res, err := t.Convert(buf)
	if err != nil {
		return fmt.Errorf("could not convert %s: %w", in, err)
	}

	err = os.WriteFile(out, res.Output, 0644)
	if err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	t.cfg.Logger.Info("converted file", "in", in, "out", out, "samples", len(res.Codes), "rate", res.Format.Rate, "channels", res.Format.Channels)
	return nil
}
