// Package config provides application configuration management.
//
// Values resolve in order: command-line flags (applied by the caller)
// override environment variables, which override the optional JSON
// config file, which overrides built-in defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/fermentab/bubbler/internal/audio"
	"github.com/fermentab/bubbler/internal/util"
)

// Configuration defaults are used when values are not specified.
const (
	DefaultFormat     = "S32_LE"
	DefaultSampleRate = 8000
	DefaultPeriodMs   = 10000
	DefaultMinGapMs   = 200
)

// validate is the shared validator instance for config validation.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in error messages instead of struct field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// Config holds all application configuration.
type Config struct {
	Input      string `json:"input"`  // input file path, empty = stdin
	Output     string `json:"output"` // output file path, empty = stdout
	Device     string `json:"device"` // capture device, empty = read from Input
	Format     string `json:"format"      validate:"required"`
	SampleRate int    `json:"sample_rate" validate:"gt=0"`
	PeriodMs   int64  `json:"period_ms"   validate:"gt=0"`
	MinGapMs   int64  `json:"min_gap_ms"  validate:"gte=0"`
	EventLog   string `json:"event_log"` // JSON lines event log path, empty = disabled
	Debug      bool   `json:"debug"`

	filePath string
}

// New creates a new Config with default values. filePath may be empty
// when no config file is used.
func New(filePath string) *Config {
	return &Config{
		Format:     DefaultFormat,
		SampleRate: DefaultSampleRate,
		PeriodMs:   DefaultPeriodMs,
		MinGapMs:   DefaultMinGapMs,
		filePath:   filePath,
	}
}

// Load reads the config file if one is configured, then applies
// environment overrides and defaults for any remaining zero values.
func (c *Config) Load() error {
	if c.filePath != "" {
		data, err := os.ReadFile(c.filePath)
		if err != nil {
			return util.WrapError("read config", err)
		}
		if err := json.Unmarshal(data, c); err != nil {
			return util.WrapError("parse config", err)
		}
	}

	c.fromEnv()
	c.applyDefaults()
	return nil
}

// fromEnv applies BUBBLER_* environment overrides. A .env file in the
// working directory is loaded first when present.
func (c *Config) fromEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	if v := os.Getenv("BUBBLER_INPUT"); v != "" {
		c.Input = v
	}
	if v := os.Getenv("BUBBLER_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("BUBBLER_DEVICE"); v != "" {
		c.Device = v
	}
	if v := os.Getenv("BUBBLER_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("BUBBLER_EVENT_LOG"); v != "" {
		c.EventLog = v
	}
	c.intFromEnv("BUBBLER_SAMPLE_RATE", func(n int64) { c.SampleRate = int(n) })
	c.intFromEnv("BUBBLER_PERIOD_MS", func(n int64) { c.PeriodMs = n })
	c.intFromEnv("BUBBLER_MIN_GAP_MS", func(n int64) { c.MinGapMs = n })
	if v := os.Getenv("BUBBLER_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		} else {
			slog.Warn("ignoring invalid environment value", "name", "BUBBLER_DEBUG", "value", v)
		}
	}
}

func (c *Config) intFromEnv(name string, set func(int64)) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("ignoring invalid environment value", "name", name, "value", v)
		return
	}
	set(n)
}

// applyDefaults sets default values for zero-value fields. MinGapMs
// keeps an explicit zero: a zero gap is a legal tunable.
func (c *Config) applyDefaults() {
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.PeriodMs == 0 {
		c.PeriodMs = DefaultPeriodMs
	}
}

// Validate checks all configuration fields for correctness. It must
// pass before any stream processing begins.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			e := verrs[0]
			return fmt.Errorf("invalid %s: value %v fails %q", e.Field(), e.Value(), e.Tag())
		}
		return err
	}

	if _, err := audio.ParseFormat(c.Format); err != nil {
		return err
	}

	if c.DetectorConfig().SamplesPerPeriod() < 1 {
		return fmt.Errorf("period_ms %d is shorter than one sample at %d Hz", c.PeriodMs, c.SampleRate)
	}
	return nil
}

// DetectorConfig returns the bubble detection tunables.
func (c *Config) DetectorConfig() audio.DetectorConfig {
	return audio.DetectorConfig{
		SampleRate: c.SampleRate,
		PeriodMs:   c.PeriodMs,
		MinGapMs:   c.MinGapMs,
	}
}
