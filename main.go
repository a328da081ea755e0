// Package main provides a bubble counter that reads a raw mono PCM
// stream, detects bubble plops against a rolling per-period baseline,
// and prints one count per listening period.
//
// Usage:
//
//	bubbler [-config path/to/config.json] [-i input] [-o output] [flags]
//
// With no input file or capture device, samples are read from stdin:
//
//	arecord -D default -f S32_LE -r 8000 -c 1 -t raw -q - | bubbler
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fermentab/bubbler/internal/audio"
	"github.com/fermentab/bubbler/internal/capture"
	"github.com/fermentab/bubbler/internal/config"
	"github.com/fermentab/bubbler/internal/counter"
	"github.com/fermentab/bubbler/internal/eventlog"
	"github.com/fermentab/bubbler/internal/util"
)

func main() {
	configPath := flag.String("config", "", "Path to JSON config file (optional)")
	input := flag.String("i", "", "Input file with raw samples (default: stdin)")
	output := flag.String("o", "", "Output file for period counts, appended (default: stdout)")
	device := flag.String("device", "", "Capture device to record from instead of reading input")
	format := flag.String("f", "", "Sample format: "+strings.Join(audio.Formats(), ", "))
	rate := flag.Int("r", 0, "Sample rate in Hz")
	period := flag.Int64("period", 0, "Listening period in milliseconds")
	minGap := flag.Int64("min-gap", -1, "Minimum gap between bubbles in milliseconds")
	eventLog := flag.String("event-log", "", "Append period events as JSON lines to this file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	listDevices := flag.Bool("list-devices", false, "List audio capture devices and exit")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		slog.Info("version info", "version", Version, "commit", Commit, "build_time", BuildTime)
		return
	}

	if *listDevices {
		for _, dev := range capture.Devices() {
			fmt.Printf("%s\t%s\n", dev.ID, dev.Name)
		}
		return
	}

	cfg := config.New(*configPath)
	if err := cfg.Load(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override everything else, but only when actually set.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.Input = *input
		case "o":
			cfg.Output = *output
		case "device":
			cfg.Device = *device
		case "f":
			cfg.Format = *format
		case "r":
			cfg.SampleRate = *rate
		case "period":
			cfg.PeriodMs = *period
		case "min-gap":
			cfg.MinGapMs = *minGap
		case "event-log":
			cfg.EventLog = *eventLog
		case "debug":
			cfg.Debug = *debug
		}
	})

	if cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	sampleFormat, err := audio.ParseFormat(cfg.Format)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, sampleFormat); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// run wires the sample source and count sink, then drives the counter
// until the stream ends or an interrupt arrives.
func run(cfg *config.Config, format audio.SampleFormat) error {
	ctx, stop := interruptible(context.Background())
	defer stop()

	var events *eventlog.Logger
	if cfg.EventLog != "" {
		var err error
		events, err = eventlog.NewLogger(cfg.EventLog)
		if err != nil {
			return util.WrapError("open event log", err)
		}
		defer events.Close()
	}

	source, proc, cleanup, err := openSource(ctx, cfg, format)
	if err != nil {
		return err
	}
	defer cleanup()

	sink, closeSink, err := openSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()

	cnt, err := counter.New(format, cfg.DetectorConfig(), bufio.NewReader(source), sink, events)
	if err != nil {
		return err
	}

	slog.Info("counting bubbles",
		"format", format.Key(),
		"rate", cfg.SampleRate,
		"period_ms", cfg.PeriodMs,
		"min_gap_ms", cfg.MinGapMs)
	if events != nil {
		if err := events.LogRunStarted(format.Key(), cfg.SampleRate, cfg.PeriodMs, cfg.MinGapMs); err != nil {
			slog.Warn("failed to write event log entry", "error", err)
		}
	}

	runErr := cnt.Run(ctx)

	if proc != nil {
		if runErr != nil {
			// The loop stopped draining the capture stdout; cancel the
			// process so Wait cannot block on a full pipe.
			cleanup()
		}
		if err := proc.Wait(); err != nil && ctx.Err() == nil && runErr == nil {
			runErr = util.WrapError("capture process", err)
		}
	}

	summary := cnt.Summary()
	reason := stopReason(ctx, runErr)
	slog.Info("run finished",
		"reason", reason,
		"periods", summary.Periods,
		"samples", summary.Samples,
		"elapsed", util.FormatDuration(summary.Elapsed.Milliseconds()))
	if events != nil {
		if err := events.LogRunStopped(summary.Periods, summary.Samples, reason); err != nil {
			slog.Warn("failed to write event log entry", "error", err)
		}
	}

	return runErr
}

// openSource returns the raw sample stream: a capture process when a
// device is configured, the input file when one is given, stdin
// otherwise. The returned cleanup must be called after the run.
func openSource(ctx context.Context, cfg *config.Config, format audio.SampleFormat) (io.Reader, *capture.Process, func(), error) {
	if cfg.Device != "" {
		// The capture process gets its own cancel so it can be forced
		// down when the run aborts while the parent context is still
		// live and nothing drains its stdout anymore.
		capCtx, cancel := context.WithCancel(ctx)
		proc, err := capture.Start(capCtx, cfg.Device, format, cfg.SampleRate)
		if err != nil {
			cancel()
			return nil, nil, nil, err
		}
		slog.Info("capture started", "command", proc.String())
		return proc.Stdout(), proc, cancel, nil
	}

	if cfg.Input != "" {
		file, err := os.Open(cfg.Input)
		if err != nil {
			return nil, nil, nil, util.WrapError("open input", err)
		}
		return file, nil, func() { file.Close() }, nil
	}

	return os.Stdin, nil, func() {}, nil
}

// openSink returns the count destination, appending to the output file
// when one is configured.
func openSink(cfg *config.Config) (io.Writer, func(), error) {
	if cfg.Output == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, util.WrapError("open output", err)
	}
	return file, func() { file.Close() }, nil
}

// interruptible returns a context canceled by the first shutdown
// signal. The signal registration is dropped as soon as the context is
// canceled, so a second interrupt falls through to the default
// disposition and terminates the process even while the read loop is
// parked on a source that never closes.
func interruptible(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, util.ShutdownSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// stopReason names why a run ended, for the summary log and event log.
func stopReason(ctx context.Context, runErr error) string {
	switch {
	case runErr != nil:
		return "error"
	case errors.Is(ctx.Err(), context.Canceled):
		return "interrupted"
	default:
		return "end of stream"
	}
}
