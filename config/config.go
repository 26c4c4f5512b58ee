// Package config gathers the run configuration from flags, RENDEZVOUS_* environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cloudfoundry-incubator/rendezvous/converters"
)

// EnvPrefix is prepended to every environment variable, e.g. RENDEZVOUS_MIN_DURATION
const EnvPrefix = "RENDEZVOUS"

// ErrConflictingModes is returned when a timeline is asked for together with another output mode
var ErrConflictingModes = errors.New("--timeline cannot be combined with --report, --stream or --raw")

// Config is everything a run needs to know
type Config struct {
	Identity    string
	MinDuration time.Duration
	Report      bool
	Stream      bool
	Raw         bool
	Timeline    string
	NoColor     bool
	Debug       bool
	Format      converters.Format
	PlotDir     string
	LogLevel    string

	// Input is the file to read; empty means stdin
	Input string

	// IdentityFilter is Identity compiled; nil when Identity is empty
	IdentityFilter *regexp.Regexp
}

// BindFlags declares every option on flags and binds it into v
func BindFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	flags.StringP("identity", "i", "", "only report requests whose top-level identity matches this regular expression")
	flags.StringP("min-duration", "d", "", "hide spans and requests faster than this (e.g. 250ms, 1.5s; bare numbers are milliseconds)")
	flags.BoolP("report", "r", false, "print an aggregate report at end of input")
	flags.BoolP("stream", "s", false, "print events as they are paired")
	flags.Bool("raw", false, "print events and spans as JSON objects")
	flags.StringP("timeline", "t", "", "print the timeline of this request id at end of input")
	flags.Bool("no-color", false, "never colorize output")
	flags.Bool("debug", false, "log skipped records and run counters to stderr")
	flags.String("format", string(converters.FormatAuto), "input format: auto, bunyan or lager")
	flags.String("plot-dir", "", "also write SVG plots (report histograms, request timeline) to this directory")
	flags.String("log-level", "warn", "diagnostic log level: debug, info, warn, error")
	flags.StringP("config", "c", "", "read options from this config file (yaml, toml or json)")

	return v.BindPFlags(flags)
}

// New returns a viper instance that reads RENDEZVOUS_* environment variables
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any), assembles a Config and validates it
func Load(v *viper.Viper, args []string) (Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if len(args) > 1 {
		return Config{}, fmt.Errorf("expected at most one input file, got %d", len(args))
	}

	minDuration, err := ParseMinDuration(v.GetString("min-duration"))
	if err != nil {
		return Config{}, err
	}

	format, err := converters.ParseFormat(v.GetString("format"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Identity:    v.GetString("identity"),
		MinDuration: minDuration,
		Report:      v.GetBool("report"),
		Stream:      v.GetBool("stream"),
		Raw:         v.GetBool("raw"),
		Timeline:    v.GetString("timeline"),
		NoColor:     v.GetBool("no-color"),
		Debug:       v.GetBool("debug"),
		Format:      format,
		PlotDir:     v.GetString("plot-dir"),
		LogLevel:    v.GetString("log-level"),
	}
	if len(args) == 1 && args[0] != "-" {
		cfg.Input = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks mode exclusivity and compiles the identity filter.
// With no mode selected the run streams.
func (c *Config) Validate() error {
	if c.Timeline != "" && (c.Report || c.Stream || c.Raw) {
		return ErrConflictingModes
	}
	if c.Timeline == "" && !c.Report && !c.Stream && !c.Raw {
		c.Stream = true
	}

	if c.Identity != "" {
		re, err := regexp.Compile(c.Identity)
		if err != nil {
			return fmt.Errorf("invalid --identity: %w", err)
		}
		c.IdentityFilter = re
	}

	if c.MinDuration < 0 {
		return fmt.Errorf("invalid --min-duration: %s is negative", c.MinDuration)
	}

	if c.Debug {
		c.LogLevel = "debug"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}

	return nil
}

// ParseMinDuration accepts Go durations ("250ms", "1.5s") and bare integers, which are milliseconds
func ParseMinDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --min-duration %q: %w", s, err)
	}
	return d, nil
}
