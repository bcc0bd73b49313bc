// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fubarnetes/dtrace/internal/pkg/native"
)

const (
	// envVersionKey is the key for the environment variable value
	// containing the libdtrace API version to request.
	envVersionKey = "DTRACE_API_VERSION"
	// envFlagsKey is the key for the environment variable value containing
	// the dtrace_open flags, as a comma separated list.
	envFlagsKey = "DTRACE_OPEN_FLAGS"
)

// Flags are the dtrace_open flags (DTRACE_O_*).
type Flags int

const (
	// FlagNoDev opens libdtrace without the DTrace device.
	FlagNoDev Flags = 0x01
	// FlagNoSys opens libdtrace without any system provider modules.
	FlagNoSys Flags = 0x02
	// FlagLP64 forces the D compiler to use the LP64 data model.
	FlagLP64 Flags = 0x04
	// FlagILP32 forces the D compiler to use the ILP32 data model.
	FlagILP32 Flags = 0x08
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagNoDev, "nodev"},
	{FlagNoSys, "nosys"},
	{FlagLP64, "lp64"},
	{FlagILP32, "ilp32"},
}

const flagsMask = FlagNoDev | FlagNoSys | FlagLP64 | FlagILP32

var errInvalidFlags = errors.New("invalid Flags")

// String returns the comma separated names of the flags set in f.
func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if rest := f &^ flagsMask; rest != 0 {
		names = append(names, fmt.Sprintf("Flags(%#x)", int(rest)))
	}
	return strings.Join(names, ",")
}

// UnmarshalText parses a comma separated list of flag names.
func (f *Flags) UnmarshalText(text []byte) error {
	var out Flags
	for _, field := range bytes.Split(text, []byte(",")) {
		field = bytes.ToLower(bytes.TrimSpace(field))
		if len(field) == 0 {
			continue
		}
		flag, ok := lookupFlag(string(field))
		if !ok {
			return fmt.Errorf("%w: %s", errInvalidFlags, field)
		}
		out |= flag
	}
	*f = out
	return f.validate()
}

func lookupFlag(name string) (Flags, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}

func (f *Flags) validate() error {
	if f == nil {
		return errors.New("nil Flags")
	}
	if *f&^flagsMask != 0 {
		return fmt.Errorf("%w: %s", errInvalidFlags, f.String())
	}
	if *f&FlagLP64 != 0 && *f&FlagILP32 != 0 {
		return fmt.Errorf("%w: lp64 and ilp32 are exclusive", errInvalidFlags)
	}
	return nil
}

// ParseFlags returns the Flags named in text, a comma separated list of
// "nodev", "nosys", "lp64" and "ilp32".
func ParseFlags(text string) (Flags, error) {
	var f Flags
	err := f.UnmarshalText([]byte(text))
	return f, err
}

// Option applies a configuration option to [Open].
type Option interface {
	apply(config) config
}

type config struct {
	library native.Library
	logger  *slog.Logger
	tp      trace.TracerProvider
	version int
	flags   Flags

	// envErr holds a failure to read the environment in WithEnv.
	envErr error
}

// Injectable for tests.
var defaultLibrary = native.Default

func newConfig(opts []Option) config {
	c := config{
		library: defaultLibrary(),
		version: native.Version,
	}
	for _, opt := range opts {
		c = opt.apply(c)
	}

	if c.logger == nil {
		c.logger = discardLogger
	}
	if c.tp == nil {
		c.tp = otel.GetTracerProvider()
	}
	return c
}

func (c config) validate() error {
	if c.envErr != nil {
		return c.envErr
	}
	if c.version <= 0 {
		return fmt.Errorf("%w: version %d", ErrInvalidArgument, c.version)
	}
	if err := c.flags.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return nil
}

type fnOpt func(config) config

func (o fnOpt) apply(c config) config { return o(c) }

// WithLogger returns an [Option] that logs with l. By default nothing is
// logged.
func WithLogger(l *slog.Logger) Option {
	return fnOpt(func(c config) config {
		c.logger = l
		return c
	})
}

// WithTracerProvider returns an [Option] that creates spans around native
// calls with tp. The global TracerProvider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return fnOpt(func(c config) config {
		c.tp = tp
		return c
	})
}

// WithVersion returns an [Option] requesting the libdtrace API version v
// instead of the default, 3.
//
// If multiple of these options are provided, the last one will be used.
func WithVersion(v int) Option {
	return fnOpt(func(c config) config {
		c.version = v
		return c
	})
}

// WithFlags returns an [Option] passing f to dtrace_open. No flags are
// passed by default.
//
// If multiple of these options are provided, the last one will be used.
func WithFlags(f Flags) Option {
	return fnOpt(func(c config) config {
		c.flags = f
		return c
	})
}

// WithEnv returns an [Option] that reads configuration from the
// environment:
//
//   - DTRACE_API_VERSION: the libdtrace API version
//   - DTRACE_OPEN_FLAGS: comma separated dtrace_open flags
//
// Environment values take precedence over options passed before WithEnv.
func WithEnv() Option {
	return fnOpt(func(c config) config {
		if v, ok := os.LookupEnv(envVersionKey); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				c.envErr = errors.Join(c.envErr, fmt.Errorf("invalid %s value: %s: %w", envVersionKey, v, err))
			} else {
				c.version = n
			}
		}
		if v, ok := os.LookupEnv(envFlagsKey); ok {
			f, err := ParseFlags(v)
			if err != nil {
				c.envErr = errors.Join(c.envErr, fmt.Errorf("invalid %s value: %s: %w", envFlagsKey, v, err))
			} else {
				c.flags = f
			}
		}
		return c
	})
}

var discardLogger = slog.New(discardHandler{})

// Replace with slog.DiscardHandler when Go 1.23 support is dropped.
type discardHandler struct{}

func (dh discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (dh discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (dh discardHandler) WithAttrs(attrs []slog.Attr) slog.Handler  { return dh }
func (dh discardHandler) WithGroup(name string) slog.Handler        { return dh }
