// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fubarnetes/dtrace/internal/pkg/native/nativetest"
)

func TestParseFlags(t *testing.T) {
	testCases := []struct {
		name  string
		str   string
		flags Flags
	}{
		{name: "Empty", str: "", flags: 0},
		{name: "NoDev", str: "nodev", flags: FlagNoDev},
		{name: "Several", str: "nodev,nosys,lp64", flags: FlagNoDev | FlagNoSys | FlagLP64},
		{name: "Spaces", str: " NoSys , ilp32 ", flags: FlagNoSys | FlagILP32},
		{name: "TrailingComma", str: "nodev,", flags: FlagNoDev},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseFlags(tc.str)
			require.NoError(t, err)
			assert.Equal(t, tc.flags, f)
		})
	}

	t.Run("ParseNotExist", func(t *testing.T) {
		_, err := ParseFlags("nodev,notexist")
		assert.ErrorIs(t, err, errInvalidFlags)
	})

	t.Run("ParseExclusive", func(t *testing.T) {
		_, err := ParseFlags("lp64,ilp32")
		assert.ErrorIs(t, err, errInvalidFlags)
	})
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "", Flags(0).String())
	assert.Equal(t, "nodev,lp64", (FlagNoDev | FlagLP64).String())
	assert.Equal(t, "nosys,Flags(0x30)", (FlagNoSys | 0x30).String())

	f, err := ParseFlags((FlagNoDev | FlagNoSys | FlagILP32).String())
	require.NoError(t, err)
	assert.Equal(t, FlagNoDev|FlagNoSys|FlagILP32, f)
}

func TestNewConfigDefaults(t *testing.T) {
	lib := &nativetest.Library{}
	useLibrary(t, lib)

	c := newConfig(nil)
	assert.Equal(t, 3, c.version)
	assert.Equal(t, Flags(0), c.flags)
	assert.Same(t, lib, c.library)
	assert.Same(t, discardLogger, c.logger)
	assert.NotNil(t, c.tp)
	assert.NoError(t, c.validate())
}

func TestNewConfigOptions(t *testing.T) {
	l := slog.Default()
	tp := noop.NewTracerProvider()

	c := newConfig([]Option{
		WithVersion(1),
		WithVersion(2),
		WithFlags(FlagNoDev),
		WithLogger(l),
		WithTracerProvider(tp),
	})
	assert.Equal(t, 2, c.version, "last WithVersion wins")
	assert.Equal(t, FlagNoDev, c.flags)
	assert.Same(t, l, c.logger)
	assert.Equal(t, tp, c.tp)
}

func TestWithEnv(t *testing.T) {
	t.Run("Unset", func(t *testing.T) {
		c := newConfig([]Option{WithVersion(2), WithEnv()})
		assert.Equal(t, 2, c.version)
		assert.NoError(t, c.validate())
	})

	t.Run("Precedence", func(t *testing.T) {
		t.Setenv(envVersionKey, "4")
		t.Setenv(envFlagsKey, "nodev,nosys")

		c := newConfig([]Option{WithVersion(2), WithFlags(FlagLP64), WithEnv()})
		assert.Equal(t, 4, c.version)
		assert.Equal(t, FlagNoDev|FlagNoSys, c.flags)

		// Options after WithEnv override it.
		c = newConfig([]Option{WithEnv(), WithVersion(2)})
		assert.Equal(t, 2, c.version)
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Setenv(envVersionKey, "three")
		t.Setenv(envFlagsKey, "nodev,bogus")

		c := newConfig([]Option{WithEnv()})
		err := c.validate()
		require.Error(t, err)
		assert.ErrorContains(t, err, envVersionKey)
		assert.ErrorContains(t, err, envFlagsKey)
		assert.ErrorIs(t, err, errInvalidFlags)
	})
}

func TestOpenWithEnv(t *testing.T) {
	lib := &nativetest.Library{}
	useLibrary(t, lib)
	t.Setenv(envVersionKey, "2")
	t.Setenv(envFlagsKey, "nodev")

	require.NoError(t, Open(context.Background(), nopSession, WithEnv()))

	version, flags := lib.OpenArgs()
	assert.Equal(t, 2, version)
	assert.Equal(t, int(FlagNoDev), flags)
}
