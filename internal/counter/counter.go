// Package counter drives the decode, detect, emit loop over a raw
// PCM byte stream.
package counter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fermentab/bubbler/internal/audio"
	"github.com/fermentab/bubbler/internal/eventlog"
	"github.com/fermentab/bubbler/internal/util"
)

// Counter reads fixed-width samples from a byte source, feeds them
// through the bubble detector, and writes one decimal count line per
// completed listening period to the sink. The sink is flushed after
// every line so live consumers see counts immediately.
type Counter struct {
	format   audio.SampleFormat
	detector *audio.BubbleDetector
	in       io.Reader
	out      *bufio.Writer
	events   *eventlog.Logger // optional, may be nil

	periods int64
	samples int64
	started time.Time
}

// New builds a Counter for the given source and sink. The detector
// configuration is validated here, before any stream processing.
func New(format audio.SampleFormat, cfg audio.DetectorConfig, in io.Reader, out io.Writer, events *eventlog.Logger) (*Counter, error) {
	detector, err := audio.NewBubbleDetector(cfg)
	if err != nil {
		return nil, err
	}
	return &Counter{
		format:   format,
		detector: detector,
		in:       in,
		out:      bufio.NewWriter(out),
		events:   events,
	}, nil
}

// Run processes the stream until end-of-stream, a short trailing
// chunk, or context cancellation. All three are clean terminations:
// any partial period is discarded and no final count is emitted.
// Read and write failures are fatal and returned; there is no retry.
func (c *Counter) Run(ctx context.Context) error {
	c.started = time.Now()
	chunk := make([]byte, c.format.Width())

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if _, err := io.ReadFull(c.in, chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// Clean end of stream. A short trailing chunk is a
				// broken final sample, not an error.
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return util.WrapError("read sample", err)
		}
		c.samples++

		ev := c.detector.Feed(c.format.Decode(chunk))
		if ev.Accepted {
			slog.Debug("bubble", "sample", c.samples, "period", c.periods+1)
		}
		if !ev.PeriodDone {
			continue
		}

		c.periods++
		if err := c.emit(ev.Bubbles); err != nil {
			return err
		}
		slog.Debug("period complete", "period", c.periods, "bubbles", ev.Bubbles,
			"mean", ev.Mean, "stddev", ev.StdDev, "peak", ev.Peak)
		if c.events != nil {
			if err := c.events.LogPeriod(c.periods, ev.Bubbles, ev.Mean, ev.StdDev, ev.Peak); err != nil {
				slog.Warn("failed to write event log entry", "error", err)
			}
		}
	}
}

// emit writes one count line and flushes it through to the sink.
func (c *Counter) emit(bubbles int) error {
	if _, err := fmt.Fprintf(c.out, "%d\n", bubbles); err != nil {
		return util.WrapError("write count", err)
	}
	if err := c.out.Flush(); err != nil {
		return util.WrapError("flush count", err)
	}
	return nil
}

// Summary describes a run's totals.
type Summary struct {
	Periods int64
	Samples int64
	Elapsed time.Duration
}

// Summary returns the totals for the run so far.
func (c *Counter) Summary() Summary {
	return Summary{
		Periods: c.periods,
		Samples: c.samples,
		Elapsed: time.Since(c.started),
	}
}
