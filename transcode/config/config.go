/*
NAME
  config.go

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

// Package config contains the configuration settings for a transcoder.
package config

import (
	"github.com/ausocean/ulaw/codec/ulaw"
	"github.com/ausocean/ulaw/codec/wav"
	"github.com/ausocean/utils/logging"
)

// Enums to define output containers.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	ContainerRaw // Bare mu-law codes.
	ContainerWAV // Mu-law codes in a RIFF/WAVE container.
)

// Config provides parameters relevant to a transcoder. A new config must
// be passed to the constructor. Default values for these fields are defined
// as consts in variables.go.
type Config struct {
	// AntiAlias enables low-pass filtering of the input before it is
	// downsampled to SampleRate.
	AntiAlias bool

	// Container defines the output container, one of ContainerRaw or
	// ContainerWAV.
	Container uint8

	FilterTaps uint    // Length of the anti-aliasing and highpass filters.
	Gain       float64 // Amplification applied before encoding; 1 leaves the audio unchanged.
	HighPass   float64 // Cutoff of a highpass filter in Hz, applied before encoding. 0 disables it.

	// InputChannels and InputRate describe the PCM in the data chunk when the
	// input has no fmt chunk.
	InputChannels uint
	InputRate     uint

	// InputPath defines the input file location for single file conversion.
	InputPath string

	// Locate defines how the data chunk is found in the input.
	//
	// Valid values:
	// wav.LocateWalk:
	//		Walk the chunk list using each chunk's declared size.
	// wav.LocateScan:
	//		Scan for the first "data" bytes after the RIFF header.
	Locate wav.Locate

	// Logger holds an implementation of the Logger interface.
	// This must be set for the transcoder to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	Mono bool // If true, stereo input is reduced to its left channel.

	OutputDir  string // Directory converted files are written to in watch mode.
	OutputPath string // Output file location for single file conversion.

	Quantization ulaw.Quantization // Mu-law quantization rule.
	SampleRate   uint              // Output sample rate in Hz. 0 keeps the input rate.
	Suppress     bool              // Holds logger suppression state.

	// TracePath, if set, names a file to which every encoded sample and its
	// code are written.
	TracePath string

	WatchDir string // Directory watched for new wav files.
	Workers  uint   // Number of goroutines used to encode. 1 encodes serially.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
