/*
NAME
  watch.go

DESCRIPTION
  watch.go converts wav files as they appear in a directory.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transcode

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/ulaw/transcode/config"
)

// Output file extensions.
const (
	extRaw = ".ul"
	extWAV = ".wav"
)

// OutputName returns the name of the converted file for the input file in,
// placed in dir. Raw output has the extension .ul, wav output .wav.
func (t *Transcoder) OutputName(in, dir string) string {
	ext := extRaw
	if t.cfg.Container == config.ContainerWAV {
		ext = extWAV
	}
	base := filepath.Base(in)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+ext)
}

// Watch converts each .wav file written to dir, placing the output in outDir,
// until ctx is cancelled. A file is converted once it has gone unmodified for
// a short settling period. Conversion failures are logged and do not stop
// the watch. Watch notifies systemd once it is watching, if run as a notify
// service.
func (t *Transcoder) Watch(ctx context.Context, dir, outDir string) error {
	if dir == "" || outDir == "" {
		return errors.New("watch and output directories must be set")
	}
	same, err := sameDir(dir, outDir)
	if err != nil {
		return err
	}
	if same {
		return errors.New("output directory must differ from watched directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer w.Close()

	err = w.Add(dir)
	if err != nil {
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}
	t.cfg.Logger.Info("watching for wav files", "dir", dir, "outDir", outDir)
	t.notify(daemon.SdNotifyReady)
	defer t.notify(daemon.SdNotifyStopping)

	pending := make(map[string]*time.Timer)
	defer func() {
		for _, tm := range pending {
			tm.Stop()
		}
	}()
	ready := make(chan string)

	for {
		select {
		case <-ctx.Done():
			t.cfg.Logger.Info("stopped watching", "dir", dir)
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) || !strings.EqualFold(filepath.Ext(ev.Name), extWAV) {
				continue
			}
			if tm, ok := pending[ev.Name]; ok {
				tm.Reset(t.settle)
				continue
			}
			name := ev.Name
			t.cfg.Logger.Debug("new wav file", "file", name)
			pending[name] = time.AfterFunc(t.settle, func() {
				select {
				case ready <- name:
				case <-ctx.Done():
				}
			})

		case name := <-ready:
			delete(pending, name)
			err := t.ConvertFile(name, t.OutputName(name, outDir))
			if err != nil {
				t.cfg.Logger.Error("could not convert file", "file", name, "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			t.cfg.Logger.Warning("watcher error", "error", err)
		}
	}
}

// notify sends state to systemd. It is a no-op outside a notify service.
func (t *Transcoder) notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		t.cfg.Logger.Warning("could not notify systemd", "state", state, "error", err)
		return
	}
	t.cfg.Logger.Debug("systemd notification", "state", state, "sent", sent)
}

// sameDir returns true if a and b name the same directory.
func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
