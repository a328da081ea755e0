// Package capture spawns the platform audio capture process
// (arecord on Linux, FFmpeg elsewhere) that feeds raw mono PCM into
// the counter, and lists available input devices.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/fermentab/bubbler/internal/audio"
	"github.com/fermentab/bubbler/internal/util"
)

// ErrNoDevice is returned when no audio input device is available.
var ErrNoDevice = errors.New("no audio input device found")

// shutdownTimeout is how long a cancelled capture process gets to
// exit gracefully before it is killed.
const shutdownTimeout = 5 * time.Second

// Device identifies an audio input device.
type Device struct {
	ID   string
	Name string
}

// Config defines platform-specific audio capture configuration.
type Config struct {
	// Command is the executable name (e.g., "arecord", "ffmpeg").
	Command string

	// DefaultDevice is used when no device is configured.
	DefaultDevice string

	// BuildArgs returns the command arguments for capturing mono raw
	// PCM from the given device in the given format and rate.
	BuildArgs func(device string, format audio.SampleFormat, rate int) []string
}

// BuildCommand returns the command and arguments for audio capture.
// If device is empty it falls back to the platform default or the
// first detected device.
func BuildCommand(device string, format audio.SampleFormat, rate int) (cmd string, args []string, err error) {
	cfg := getPlatformConfig()

	if device == "" {
		device = cfg.DefaultDevice
	}
	if device == "" {
		devices := Devices()
		if len(devices) == 0 {
			return "", nil, ErrNoDevice
		}
		device = devices[0].ID
	}

	return cfg.Command, cfg.BuildArgs(device, format, rate), nil
}

// Process is a running capture subprocess. Its stdout carries the raw
// sample stream.
type Process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
}

// Start launches the capture process for the given device. Cancelling
// ctx sends the process a graceful interrupt first and kills it after
// shutdownTimeout.
func Start(ctx context.Context, device string, format audio.SampleFormat, rate int) (*Process, error) {
	name, args, err := BuildCommand(device, format, rate)
	if err != nil {
		return nil, err
	}
	return startCommand(ctx, name, args)
}

// startCommand launches name with graceful-interrupt cancellation and
// a bounded kill delay, capturing stderr for error extraction.
func startCommand(ctx context.Context, name string, args []string) (*Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error {
		return util.GracefulSignal(cmd.Process)
	}
	cmd.WaitDelay = shutdownTimeout

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, util.WrapError("create capture pipe", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, util.WrapError("start capture process", err)
	}

	return &Process{cmd: cmd, stdout: stdout, stderr: &stderr}, nil
}

// Stdout returns the raw PCM stream.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Wait reaps the capture process. When it failed, the returned error
// carries the last meaningful stderr line.
func (p *Process) Wait() error {
	err := p.cmd.Wait()
	if err == nil {
		return nil
	}
	if msg := util.ExtractLastError(p.stderr.String()); msg != "" {
		return fmt.Errorf("%s: %s", p.cmd.Path, msg)
	}
	return err
}

// String returns the capture command line for logging.
func (p *Process) String() string {
	return strings.Join(p.cmd.Args, " ")
}
