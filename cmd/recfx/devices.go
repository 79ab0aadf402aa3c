package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	recfx "github.com/tphakala/go-audio-recfx"
	"github.com/tphakala/go-audio-recfx/internal/device"
	"github.com/tphakala/go-audio-recfx/internal/device/speaker"
)

// Playback device names accepted by -play.
const (
	playSpeaker = "speaker"
	playNull    = "null"
	playWAV     = "wav"
)

// newCapture opens the -in clip or falls back to a test tone. A clip sets the
// session sample rate.
func newCapture(o *options, cfg *recfx.Config, logger logrus.FieldLogger) (recfx.CaptureDevice, error) {
	if o.in == "" {
		return &device.ToneSource{Frequency: o.tone, Realtime: o.realtime}, nil
	}

	clip, err := device.OpenWAV(o.in)
	if err != nil {
		return nil, err
	}
	if clip.SampleRate != cfg.SampleRate {
		logger.WithFields(logrus.Fields{
			"file_rate":    clip.SampleRate,
			"session_rate": cfg.SampleRate,
		}).Info("Using input file sample rate")
		cfg.SampleRate = clip.SampleRate
	}

	src := device.NewWAVSource(clip)
	src.Loop = o.loop
	src.Realtime = o.realtime
	return src, nil
}

// newPlayback returns the -play device. The speaker opens at cfg.Volume. The
// WAV sink is also returned on its own so the caller can point it at a new
// file per run.
func newPlayback(o *options, cfg *recfx.Config) (recfx.PlaybackDevice, *device.WAVSink, error) {
	switch strings.ToLower(o.play) {
	case playSpeaker:
		sp, err := speaker.New(cfg.Volume)
		if err != nil {
			return nil, nil, err
		}
		return sp, nil, nil
	case playNull:
		return &device.NullSink{Realtime: o.realtime}, nil, nil
	case playWAV:
		if o.out == "" {
			return nil, nil, fmt.Errorf("-play %s requires -out", playWAV)
		}
		sink := &device.WAVSink{Path: o.out, Realtime: o.realtime}
		return sink, sink, nil
	default:
		return nil, nil, fmt.Errorf("unknown playback device %q", o.play)
	}
}

// outputPath tags out with the effect name in cycle mode so runs do not
// overwrite each other.
func outputPath(out string, e recfx.Effect, cycle bool) string {
	if !cycle || out == "" {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-" + e.String() + ext
}

// crlfWriter restores line starts while the terminal is in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
