// Command recfx records a fixed-length take, applies an audio effect and plays
// it back.
//
// Usage:
//
//	recfx                                       # cycle effects, any key advances
//	recfx -effect reverb -in voice.wav          # one reverb run from a WAV file
//	recfx -effect distortion -play null -out take.wav
//	recfx -offline -effect nightcore in.wav out.wav
//
// In cycle mode any key aborts the current recording or playback and moves on
// to the next effect; q, Esc or Ctrl-C quits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/sirupsen/logrus"

	recfx "github.com/tphakala/go-audio-recfx"
	"github.com/tphakala/go-audio-recfx/internal/device"
	"github.com/tphakala/go-audio-recfx/internal/effects"
	"github.com/tphakala/go-audio-recfx/internal/simdops"
)

const (
	// CLI defaults
	cycleMode    = "cycle"
	defaultTone  = device.DefaultToneFrequency
	offlineArgs  = 2
	pollInterval = 5 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	effect     string
	in         string
	out        string
	play       string
	tail       string
	tone       float64
	rate       int
	block      int
	blocks     int
	volume     int
	threshold  int
	loop       bool
	realtime   bool
	hold       bool
	offline    bool
	verbose    bool
	cpuprofile string
}

func parseFlags() *options {
	o := &options{}
	flag.StringVar(&o.effect, "effect", cycleMode, "Effect: passthrough, vibrato, nightcore, reverb, distortion or cycle")
	flag.StringVar(&o.in, "in", "", "Capture from this WAV file instead of a test tone")
	flag.StringVar(&o.out, "out", "", "Write each processed recording to this WAV file")
	flag.StringVar(&o.play, "play", playSpeaker, "Playback device: speaker, null or wav (writes -out)")
	flag.StringVar(&o.tail, "tail", effects.TailWrap.String(), "Reverb tail handling: wrap or silence")
	flag.Float64Var(&o.tone, "tone", defaultTone, "Test tone frequency in Hz when no -in file is given")
	flag.IntVar(&o.rate, "rate", recfx.DefaultSampleRate, "Sample rate in Hz (ignored with -in)")
	flag.IntVar(&o.block, "block", recfx.DefaultBlockSize, "Staging buffer length in samples (even)")
	flag.IntVar(&o.blocks, "blocks", recfx.DefaultBlocks, "Staging blocks per recording")
	flag.IntVar(&o.volume, "volume", recfx.DefaultVolume, "Playback volume 0-100")
	flag.IntVar(&o.threshold, "threshold", int(recfx.DefaultConfig().Distortion.Threshold), "Distortion clip level")
	flag.BoolVar(&o.loop, "loop", false, "Loop the -in clip instead of falling silent at its end")
	flag.BoolVar(&o.realtime, "realtime", true, "Pace software devices to the sample rate")
	flag.BoolVar(&o.hold, "hold", false, "Keep playback open until a key is pressed")
	flag.BoolVar(&o.offline, "offline", false, "Process input.wav into output.wav without devices")
	flag.BoolVar(&o.verbose, "v", false, "Verbose output")
	flag.StringVar(&o.cpuprofile, "cpuprofile", "", "Write CPU profile to file")
	flag.Parse()
	return o
}

func run() error {
	o := parseFlags()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if o.cpuprofile != "" {
		f, err := os.Create(o.cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = f.Close()
		}()
	}

	cfg, err := buildConfig(o)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	logger.WithFields(logrus.Fields{
		"simd":        simdops.Info(),
		"sample_rate": cfg.SampleRate,
		"block_size":  cfg.BlockSize,
		"blocks":      cfg.Blocks,
	}).Debug("Starting recfx")

	if o.offline {
		return runOffline(o, cfg, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	capDev, err := newCapture(o, cfg, logger)
	if err != nil {
		return err
	}
	playDev, sink, err := newPlayback(o, cfg)
	if err != nil {
		return err
	}

	// A terminal on stdin doubles as the user button.
	var keys *device.KeyAborter
	restore, err := device.RawTerminal(os.Stdin)
	switch {
	case err == nil:
		defer restore()
		logger.SetOutput(crlfWriter{os.Stderr})
		keys = device.NewKeyAborter(os.Stdin)
	case errors.Is(err, device.ErrNotTerminal):
		logger.Debug("stdin is not a terminal, key control disabled")
	default:
		return fmt.Errorf("failed to set raw terminal mode: %w", err)
	}

	cycle := o.effect == cycleMode
	cfg.HoldAfterPlayback = o.hold || (cycle && keys != nil)
	cfg.Status = recfx.NewStatusWriter(os.Stdout)

	devs := recfx.Devices{Capture: capDev, Playback: playDev}
	if keys != nil {
		devs.Abort = keys
	}
	rec, err := recfx.New(cfg, devs)
	if err != nil {
		return err
	}

	e := recfx.EffectPassthrough
	if !cycle {
		if e, err = recfx.ParseEffect(o.effect); err != nil {
			return err
		}
	}

	for {
		if keys != nil {
			keys.Reset()
		}
		if sink != nil {
			sink.Path = outputPath(o.out, e, cycle)
		}

		res, err := rec.Run(ctx, e)
		logResult(logger, res, err)
		switch {
		case err == nil:
			if sink == nil && o.out != "" {
				path := outputPath(o.out, e, cycle)
				if err := recfx.ExportWAV(path, rec.Store(), cfg.SampleRate); err != nil {
					return err
				}
				logger.WithField("path", path).Info("Recording exported")
			}
		case errors.Is(err, recfx.ErrCancelled):
		default:
			return err
		}

		if !cycle || ctx.Err() != nil || (keys != nil && keys.QuitRequested()) {
			return nil
		}
		e = e.Next()
	}
}

func buildConfig(o *options) (*recfx.Config, error) {
	tail, err := effects.ParseTailMode(o.tail)
	if err != nil {
		return nil, err
	}

	cfg := recfx.DefaultConfig()
	cfg.SampleRate = o.rate
	cfg.BlockSize = o.block
	cfg.Blocks = o.blocks
	cfg.Volume = o.volume
	cfg.PollInterval = pollInterval
	cfg.Reverb.Tail = tail
	cfg.Distortion.Threshold = int32(o.threshold)
	return cfg, nil
}

func runOffline(o *options, cfg *recfx.Config, logger *logrus.Logger) error {
	args := flag.Args()
	if len(args) < offlineArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s -offline [options] input.wav output.wav\n\n", os.Args[0])
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}

	e, err := recfx.ParseEffect(o.effect)
	if err != nil {
		return err
	}

	start := time.Now()
	levels, err := recfx.ProcessWAV(args[0], args[1], e, cfg)
	if err != nil {
		return err
	}
	logger.WithFields(levels.Fields()).WithFields(logrus.Fields{
		"effect":  e.String(),
		"input":   args[0],
		"output":  args[1],
		"elapsed": time.Since(start).Round(time.Millisecond).String(),
	}).Info("File processed")
	return nil
}

func logResult(logger logrus.FieldLogger, res recfx.Result, err error) {
	fields := logrus.Fields{
		"effect":    res.Effect.String(),
		"captured":  res.Captured,
		"completed": res.Completed,
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.WithFields(fields).Warn("Run ended early")
		return
	}
	logger.WithFields(fields).Info("Run finished")
}
