/*
DESCRIPTION
  wav2ulaw converts RIFF/WAVE 16-bit PCM files to G.711 mu-law, either a
  single file or every wav file written to a watched directory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package wav2ulaw is a command for converting wav files to mu-law.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ausocean/utils/logging"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/ulaw/transcode"
	"github.com/ausocean/ulaw/transcode/config"
)

// Current software version.
const version = "v1.0.0"

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

// flagKeys maps command line flags to the config variables they set.
var flagKeys = map[string]string{
	"in":        config.KeyInputPath,
	"out":       config.KeyOutputPath,
	"container": config.KeyContainer,
	"locate":    config.KeyLocate,
	"quant":     config.KeyQuantization,
	"rate":      config.KeySampleRate,
	"inrate":    config.KeyInputRate,
	"inchans":   config.KeyInputChannels,
	"mono":      config.KeyMono,
	"antialias": config.KeyAntiAlias,
	"taps":      config.KeyFilterTaps,
	"highpass":  config.KeyHighPass,
	"gain":      config.KeyGain,
	"workers":   config.KeyWorkers,
	"trace":     config.KeyTracePath,
	"watch":     config.KeyWatchDir,
	"outdir":    config.KeyOutputDir,
	"LogLevel":  config.KeyLogging,
}

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		confPath    = flag.String("config", "", "path of a JSON file of config variables, overridden by flags")
		logPath     = flag.String("logpath", "", "path of a log file, in addition to stderr")
	)
	flag.String("in", "", "input wav file")
	flag.String("out", "", "output file")
	flag.String("container", "raw", "output container: raw or wav")
	flag.String("locate", "walk", "data chunk location: walk or scan")
	flag.String("quant", "g711", "segment 0 quantization: g711 or legacy")
	flag.Uint("rate", 0, "output sample rate in Hz, 0 keeps the input rate")
	flag.Uint("inrate", 8000, "sample rate of input without a fmt chunk")
	flag.Uint("inchans", 1, "channels of input without a fmt chunk")
	flag.Bool("mono", false, "keep only the left channel of stereo input")
	flag.Bool("antialias", true, "low-pass filter before downsampling")
	flag.Uint("taps", 64, "filter length")
	flag.Float64("highpass", 0, "highpass cutoff in Hz, 0 disables")
	flag.Float64("gain", 1, "gain applied before encoding")
	flag.Uint("workers", 1, "encoding goroutines")
	flag.String("trace", "", "file to write each encoded sample to")
	flag.String("watch", "", "directory to watch for wav files")
	flag.String("outdir", "", "directory for files converted in watch mode")
	flag.String("LogLevel", "Info", "log level: Debug, Info, Warning, Error or Fatal")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	var w io.Writer = os.Stderr
	if *logPath != "" {
		// Create lumberjack logger to handle logging to file.
		fileLog := &lumberjack.Logger{
			Filename:   *logPath,
			MaxSize:    logMaxSize,
			MaxBackups: logMaxBackup,
			MaxAge:     logMaxAge,
		}
		defer fileLog.Close()
		w = io.MultiWriter(os.Stderr, fileLog)
	}
	log := logging.New(logVerbosity, w, logSuppress)
	log.Debug("starting wav2ulaw", "version", version)

	vars, err := readVars(*confPath)
	if err != nil {
		log.Fatal("could not read config", "error", err)
	}
	log.Debug("config vars", "vars", vars)

	cfg := config.Config{Logger: log}
	cfg.Update(vars)
	tc, err := transcode.New(cfg)
	if err != nil {
		log.Fatal("could not initialise transcoder", "error", err)
	}
	cfg = tc.Config()

	if cfg.WatchDir != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = tc.Watch(ctx, cfg.WatchDir, cfg.OutputDir)
		if err != nil {
			log.Fatal("watch failed", "error", err)
		}
		return
	}

	if cfg.InputPath == "" || cfg.OutputPath == "" {
		flag.Usage()
		log.Fatal("input and output paths are required unless watching a directory")
	}
	err = tc.ConvertFile(cfg.InputPath, cfg.OutputPath)
	if err != nil {
		log.Fatal("conversion failed", "error", err)
	}
}

// readVars returns the config variables from the JSON file at path, if any, with
// those set on the command line taking precedence. Flags left at their
// defaults only supply a value when the file does not.
func readVars(path string) (map[string]string, error) {
	v := make(map[string]string)
	flag.VisitAll(func(f *flag.Flag) {
		if k, ok := flagKeys[f.Name]; ok {
			v[k] = f.DefValue
		}
	})

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		var file map[string]string
		err = json.Unmarshal(data, &file)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
		for k, val := range file {
			v[k] = val
		}
	}

	flag.Visit(func(f *flag.Flag) {
		if k, ok := flagKeys[f.Name]; ok {
			v[k] = f.Value.String()
		}
	})
	return v, nil
}
