// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli lists the probes known to DTrace.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/fubarnetes/dtrace"
)

const help = `Usage of %s:
  -format string
    	Output format ("text", "json", "yaml") (default "text")
  -provider string
    	Only list probes of this provider
  -module string
    	Only list probes in this module
  -function string
    	Only list probes in this function
  -name string
    	Only list probes with this name
  -id value
    	Only list the probe with this ID (0 to 4294967295)
  -flags string
    	Comma separated dtrace_open flags ("nodev", "nosys", "lp64", "ilp32")
  -log-level string
    	Logging level ("debug", "info", "warn", "error")
  -version
    	Print the version and exit

Lists the probes known to DTrace, like dtrace -l. Provider, module, function
and name filters may be glob patterns.

Environment variable configuration:

	- DTRACE_LOG_LEVEL: log level (flag takes precedence)
	- DTRACE_API_VERSION: libdtrace API version to request
	- DTRACE_OPEN_FLAGS: dtrace_open flags (flag takes precedence)
`

const (
	// envLogLevelKey is the key for the environment variable value containing the
	// log level.
	envLogLevelKey = "DTRACE_LOG_LEVEL"

	programName = "dtrace-probes"
)

func usage() {
	program := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, help, program)
}

// newLogger returns a JSON logger writing to w. The level comes from lvlStr,
// then DTRACE_LOG_LEVEL, then defaults to info. Every record carries the
// program name and release.
func newLogger(w io.Writer, lvlStr string) *slog.Logger {
	levelVar := new(slog.LevelVar)
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true, Level: levelVar})
	logger := slog.New(h).With(
		slog.String("program", programName),
		slog.String("release", dtrace.Version()),
	)

	src := "flag"
	if lvlStr == "" {
		lvlStr, src = os.Getenv(envLogLevelKey), envLogLevelKey
	}
	if lvlStr == "" {
		return logger
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(lvlStr)); err != nil {
		logger.Warn("ignoring log level", "error", err, "origin", src, "log-level", lvlStr)
		return logger
	}
	levelVar.Set(level)
	return logger
}

var errInvalidProbeID = errors.New("invalid probe ID")

// parseProbeID parses a decimal probe ID. Values that do not fit the 32-bit
// ID libdtrace uses are rejected rather than wrapped.
func parseProbeID(s string) (dtrace.ProbeID, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, fmt.Errorf("%w %q: %w", errInvalidProbeID, s, err)
	}
	return dtrace.ProbeID(id), nil
}

// probeIDFlag returns a flag.Func setter for dst. A rejected value leaves
// dst unchanged and makes flag parsing fail with exit status 2.
func probeIDFlag(dst *dtrace.ProbeID) func(string) error {
	return func(s string) error {
		id, err := parseProbeID(s)
		if err != nil {
			return err
		}
		*dst = id
		return nil
	}
}

// listConfig is the parsed command line.
type listConfig struct {
	format   outputFormat
	filter   dtrace.Probe
	flags    dtrace.Flags
	setFlags bool
}

func main() {
	var (
		logLevel    string
		format      string
		flagsStr    string
		showVersion bool
		cfg         listConfig
	)

	flag.StringVar(&format, "format", string(formatText), `Output format ("text", "json", "yaml")`)
	flag.StringVar(&cfg.filter.Provider, "provider", "", "Only list probes of this provider")
	flag.StringVar(&cfg.filter.Module, "module", "", "Only list probes in this module")
	flag.StringVar(&cfg.filter.Function, "function", "", "Only list probes in this function")
	flag.StringVar(&cfg.filter.Name, "name", "", "Only list probes with this name")
	flag.Func("id", "Only list the probe with this ID (0 to 4294967295)", probeIDFlag(&cfg.filter.ID))
	flag.StringVar(&flagsStr, "flags", "", "Comma separated dtrace_open flags")
	flag.StringVar(&logLevel, "log-level", "", `Logging level ("debug", "info", "warn", "error")`)
	flag.BoolVar(&showVersion, "version", false, "Print the version and exit")

	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Println(newVersion())
		return
	}

	logger := newLogger(os.Stderr, logLevel)

	var err error
	if cfg.format, err = parseOutputFormat(format); err != nil {
		logger.Error("invalid output format", "error", err, "format", format)
		os.Exit(2)
	}
	if flagsStr != "" {
		if cfg.flags, err = dtrace.ParseFlags(flagsStr); err != nil {
			logger.Error("invalid flags", "error", err, "flags", flagsStr)
			os.Exit(2)
		}
		cfg.setFlags = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Debug("listing probes", "version", newVersion(), "filter", cfg.filter.String(), "format", cfg.format)

	if err := run(ctx, logger, os.Stdout, cfg); err != nil {
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, l *slog.Logger, w io.Writer, cfg listConfig) error {
	if !isRoot() {
		l.Debug("not running as root, opening DTrace will likely fail")
	}

	probes, err := enumerateFn(ctx, l, cfg)
	if err != nil {
		if errors.Is(err, dtrace.ErrInsufficientPrivileges) {
			l.Error("insufficient privileges, try running as root", "error", err)
		} else {
			l.Error("failed to list probes", "error", err)
		}
		// Probes delivered before a decode error are still written.
		if len(probes) == 0 {
			return err
		}
	}

	if werr := writeProbes(w, cfg.format, probes); werr != nil {
		l.Error("failed to write probes", "error", werr)
		return errors.Join(err, werr)
	}
	return err
}

// Used for testing.
var enumerateFn = enumerate

// filtered reports whether the command line narrows the listing. A zero
// filter, ID included, lists every probe.
func (c listConfig) filtered() bool {
	return c.filter != (dtrace.Probe{})
}

// openOptions configures dtrace.Open. An explicit -flags overrides
// DTRACE_OPEN_FLAGS, so WithFlags must follow WithEnv.
func (c listConfig) openOptions(l *slog.Logger) []dtrace.Option {
	opts := []dtrace.Option{dtrace.WithLogger(l), dtrace.WithEnv()}
	if c.setFlags {
		opts = append(opts, dtrace.WithFlags(c.flags))
	}
	return opts
}

func enumerate(ctx context.Context, l *slog.Logger, cfg listConfig) ([]dtrace.Probe, error) {
	var probes []dtrace.Probe
	collect := func(p dtrace.Probe) { probes = append(probes, p) }

	err := dtrace.Open(ctx, func(h *dtrace.Handle) error {
		if !cfg.filtered() {
			return h.Probes(ctx, collect)
		}
		return h.ProbesMatching(ctx, cfg.filter, collect)
	}, cfg.openOptions(l)...)
	return probes, err
}
