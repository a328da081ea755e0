// Package eventlog provides an optional JSON lines log of counter
// run and period events, for dashboards and log collectors that want
// more than the bare count stream.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event.
type EventType string

// Event types written during a run.
const (
	RunStarted  EventType = "run_started"
	PeriodCount EventType = "period_count"
	RunStopped  EventType = "run_stopped"
)

// Event represents a single log entry with type-specific details.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Type      EventType `json:"type"`
	Details   any       `json:"details,omitempty"`
}

// StartDetails echoes the configuration a run starts with.
type StartDetails struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	PeriodMs   int64  `json:"period_ms"`
	MinGapMs   int64  `json:"min_gap_ms"`
}

// StopDetails carries a finished run's totals. The counters are
// written even when zero: an empty run is telemetry too.
type StopDetails struct {
	Periods int64  `json:"periods"`
	Samples int64  `json:"samples"`
	Reason  string `json:"reason"`
}

// PeriodDetails carries one completed listening period.
type PeriodDetails struct {
	Period  int64   `json:"period"`
	Bubbles int     `json:"bubbles"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stddev"`
	Peak    float64 `json:"peak"`
}

// Logger writes events to a JSON lines file. It is safe for
// concurrent use.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
	encoder  *json.Encoder
}

// NewLogger creates a new event logger appending to the given path.
func NewLogger(filePath string) (*Logger, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		filePath: filePath,
		file:     file,
		encoder:  json.NewEncoder(file),
	}, nil
}

// Log writes an event to the log file.
func (l *Logger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	return l.encoder.Encode(event)
}

// LogRunStarted records the configuration a run starts with.
func (l *Logger) LogRunStarted(format string, sampleRate int, periodMs, minGapMs int64) error {
	return l.Log(&Event{
		Type: RunStarted,
		Details: &StartDetails{
			Format:     format,
			SampleRate: sampleRate,
			PeriodMs:   periodMs,
			MinGapMs:   minGapMs,
		},
	})
}

// LogPeriod records one completed listening period.
func (l *Logger) LogPeriod(period int64, bubbles int, mean, stddev, peak float64) error {
	return l.Log(&Event{
		Type: PeriodCount,
		Details: &PeriodDetails{
			Period:  period,
			Bubbles: bubbles,
			Mean:    mean,
			StdDev:  stddev,
			Peak:    peak,
		},
	})
}

// LogRunStopped records why a run ended and its totals.
func (l *Logger) LogRunStopped(periods, samples int64, reason string) error {
	return l.Log(&Event{
		Type: RunStopped,
		Details: &StopDetails{
			Periods: periods,
			Samples: samples,
			Reason:  reason,
		},
	})
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Path returns the path to the log file.
func (l *Logger) Path() string {
	return l.filePath
}
