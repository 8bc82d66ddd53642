/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/ulaw/codec/ulaw"
	"github.com/ausocean/ulaw/codec/wav"
	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyAntiAlias     = "AntiAlias"
	KeyContainer     = "Container"
	KeyFilterTaps    = "FilterTaps"
	KeyGain          = "Gain"
	KeyHighPass      = "HighPass"
	KeyInputChannels = "InputChannels"
	KeyInputPath     = "InputPath"
	KeyInputRate     = "InputRate"
	KeyLocate        = "Locate"
	KeyLogging       = "logging"
	KeyMono          = "Mono"
	KeyOutputDir     = "OutputDir"
	KeyOutputPath    = "OutputPath"
	KeyQuantization  = "Quantization"
	KeySampleRate    = "SampleRate"
	KeySuppress      = "Suppress"
	KeyTracePath     = "TracePath"
	KeyWatchDir      = "WatchDir"
	KeyWorkers       = "Workers"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	defaultContainer     = ContainerRaw
	defaultVerbosity     = logging.Error
	defaultInputRate     = 8000
	defaultInputChannels = 1
	defaultFilterTaps    = 64
	defaultGain          = 1.0
	defaultWorkers       = 1
	defaultLocate        = wav.LocateWalk
	defaultQuantization  = ulaw.G711

	// Upper bounds.
	maxChannels = 2
	maxRate     = 192000
	maxWorkers  = 64
)

// Variables describes the variables that can be used for transcoder control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyAntiAlias,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.AntiAlias = parseBool(KeyAntiAlias, v, c) },
	},
	{
		Name: KeyContainer,
		Type: "enum:raw,wav",
		Update: func(c *Config, v string) {
			c.Container = parseEnum(
				KeyContainer,
				v,
				map[string]uint8{
					"raw": ContainerRaw,
					"wav": ContainerWAV,
				},
				c,
			)
		},
		Validate: func(c *Config) {
			switch c.Container {
			case ContainerRaw, ContainerWAV:
			default:
				c.LogInvalidField(KeyContainer, defaultContainer)
				c.Container = defaultContainer
			}
		},
	},
	{
		Name:   KeyFilterTaps,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FilterTaps = parseUint(KeyFilterTaps, v, c) },
		Validate: func(c *Config) {
			c.FilterTaps = lessThanOrEqual(KeyFilterTaps, c.FilterTaps, 0, c, defaultFilterTaps)
		},
	},
	{
		Name:   KeyGain,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Gain = parseFloat(KeyGain, v, c) },
		Validate: func(c *Config) {
			if c.Gain <= 0 {
				c.LogInvalidField(KeyGain, defaultGain)
				c.Gain = defaultGain
			}
		},
	},
	{
		Name:   KeyHighPass,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.HighPass = parseFloat(KeyHighPass, v, c) },
		Validate: func(c *Config) {
			if c.HighPass < 0 {
				c.LogInvalidField(KeyHighPass, 0)
				c.HighPass = 0
			}
		},
	},
	{
		Name:   KeyInputChannels,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.InputChannels = parseUint(KeyInputChannels, v, c) },
		Validate: func(c *Config) {
			if c.InputChannels == 0 || c.InputChannels > maxChannels {
				c.LogInvalidField(KeyInputChannels, defaultInputChannels)
				c.InputChannels = defaultInputChannels
			}
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name:   KeyInputRate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.InputRate = parseUint(KeyInputRate, v, c) },
		Validate: func(c *Config) {
			if c.InputRate == 0 || c.InputRate > maxRate {
				c.LogInvalidField(KeyInputRate, defaultInputRate)
				c.InputRate = defaultInputRate
			}
		},
	},
	{
		Name: KeyLocate,
		Type: "enum:walk,scan",
		Update: func(c *Config, v string) {
			l, err := wav.LocateFromString(v)
			if err != nil {
				c.Logger.Warning(fmt.Sprintf("invalid value for %s param", KeyLocate), "value", v)
			}
			c.Locate = l
		},
		Validate: func(c *Config) {
			switch c.Locate {
			case wav.LocateWalk, wav.LocateScan:
			default:
				c.LogInvalidField(KeyLocate, defaultLocate)
				c.Locate = defaultLocate
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyMono,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Mono = parseBool(KeyMono, v, c) },
	},
	{
		Name:   KeyOutputDir,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputDir = v },
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name: KeyQuantization,
		Type: "enum:g711,legacy",
		Update: func(c *Config, v string) {
			q, err := ulaw.QuantizationFromString(strings.ToLower(v))
			if err != nil {
				c.Logger.Warning(fmt.Sprintf("invalid value for %s param", KeyQuantization), "value", v)
			}
			c.Quantization = q
		},
		Validate: func(c *Config) {
			switch c.Quantization {
			case ulaw.G711, ulaw.Legacy:
			default:
				c.LogInvalidField(KeyQuantization, defaultQuantization)
				c.Quantization = defaultQuantization
			}
		},
	},
	{
		Name:   KeySampleRate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.SampleRate = parseUint(KeySampleRate, v, c) },
		Validate: func(c *Config) {
			if c.SampleRate > maxRate {
				c.LogInvalidField(KeySampleRate, 0)
				c.SampleRate = 0
			}
		},
	},
	{
		Name: KeySuppress,
		Type: typeBool,
		Update: func(c *Config, v string) {
			c.Suppress = parseBool(KeySuppress, v, c)
			if l, ok := c.Logger.(*logging.JSONLogger); ok {
				l.SetSuppress(c.Suppress)
			}
		},
	},
	{
		Name:   KeyTracePath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.TracePath = v },
	},
	{
		Name:   KeyWatchDir,
		Type:   typeString,
		Update: func(c *Config, v string) { c.WatchDir = v },
	},
	{
		Name:   KeyWorkers,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Workers = parseUint(KeyWorkers, v, c) },
		Validate: func(c *Config) {
			if c.Workers == 0 || c.Workers > maxWorkers {
				c.LogInvalidField(KeyWorkers, defaultWorkers)
				c.Workers = defaultWorkers
			}
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected float for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
