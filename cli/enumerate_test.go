// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fubarnetes/dtrace"
	"github.com/fubarnetes/dtrace/internal/pkg/native"
	"github.com/fubarnetes/dtrace/internal/pkg/native/nativetest"
)

func fakeLibrary(t *testing.T) *nativetest.Library {
	t.Helper()
	lib := &nativetest.Library{
		Records: []native.ProbeDesc{
			nativetest.Desc(1, "dtrace", "", "", "BEGIN"),
			nativetest.Desc(4, "syscall", "freebsd", "read", "entry"),
			nativetest.Desc(5, "syscall", "freebsd", "read", "return"),
		},
	}
	nativetest.Use(t, lib)
	return lib
}

func TestEnumerateFilter(t *testing.T) {
	testCases := []struct {
		name    string
		filter  dtrace.Probe
		wantIDs []dtrace.ProbeID
		// wantFilter is nil when every probe is listed.
		wantFilter *native.ProbeDesc
	}{
		{
			name:    "All",
			wantIDs: []dtrace.ProbeID{1, 4, 5},
		},
		{
			name:       "IDOnly",
			filter:     dtrace.Probe{ID: 5},
			wantIDs:    []dtrace.ProbeID{5},
			wantFilter: &native.ProbeDesc{ID: 5},
		},
		{
			name:    "Fields",
			filter:  dtrace.Probe{Provider: "syscall", Name: "entry"},
			wantIDs: []dtrace.ProbeID{4},
			wantFilter: func() *native.ProbeDesc {
				d := nativetest.Desc(0, "syscall", "", "", "entry")
				return &d
			}(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lib := fakeLibrary(t)
			cfg := listConfig{filter: tc.filter}
			assert.Equal(t, tc.wantFilter != nil, cfg.filtered())

			probes, err := enumerate(context.Background(), discardLogger, cfg)
			require.NoError(t, err)

			var ids []dtrace.ProbeID
			for _, p := range probes {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
			assert.Equal(t, []*native.ProbeDesc{tc.wantFilter}, lib.Filters())
			assert.Equal(t, 1, lib.Closes())
		})
	}
}

func TestEnumerateFlags(t *testing.T) {
	testCases := []struct {
		name     string
		env      string
		flags    dtrace.Flags
		setFlags bool
		want     dtrace.Flags
	}{
		{name: "None"},
		{name: "Env", env: "nodev", want: dtrace.FlagNoDev},
		{name: "Flag", flags: dtrace.FlagNoSys, setFlags: true, want: dtrace.FlagNoSys},
		{name: "FlagOverridesEnv", env: "nodev,lp64", flags: dtrace.FlagNoSys, setFlags: true, want: dtrace.FlagNoSys},
		{name: "ExplicitZeroOverridesEnv", env: "nodev", setFlags: true, want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lib := fakeLibrary(t)
			t.Setenv("DTRACE_OPEN_FLAGS", tc.env)

			cfg := listConfig{flags: tc.flags, setFlags: tc.setFlags}
			_, err := enumerate(context.Background(), discardLogger, cfg)
			require.NoError(t, err)

			_, flags := lib.OpenArgs()
			assert.Equal(t, int(tc.want), flags)
		})
	}
}

func TestEnumerateAPIVersionFromEnv(t *testing.T) {
	lib := fakeLibrary(t)
	t.Setenv("DTRACE_API_VERSION", "2")

	_, err := enumerate(context.Background(), discardLogger, listConfig{})
	require.NoError(t, err)

	version, _ := lib.OpenArgs()
	assert.Equal(t, 2, version)
}

func TestRunEnumerate(t *testing.T) {
	t.Run("Listing", func(t *testing.T) {
		fakeLibrary(t)

		var out bytes.Buffer
		cfg := listConfig{format: formatText, filter: dtrace.Probe{Function: "read"}}
		require.NoError(t, run(context.Background(), discardLogger, &out, cfg))
		assert.Contains(t, out.String(), "entry")
		assert.Contains(t, out.String(), "return")
		assert.NotContains(t, out.String(), "BEGIN")
	})

	t.Run("OpenFailure", func(t *testing.T) {
		lib := &nativetest.Library{Code: 1062}
		nativetest.Use(t, lib)

		var out bytes.Buffer
		err := run(context.Background(), discardLogger, &out, listConfig{format: formatText})
		assert.ErrorIs(t, err, dtrace.ErrInsufficientPrivileges)
		assert.Empty(t, out.String())
	})

	t.Run("InvalidFilter", func(t *testing.T) {
		lib := fakeLibrary(t)

		long := string(bytes.Repeat([]byte("p"), native.ProvNameLen))
		err := run(context.Background(), discardLogger, &bytes.Buffer{}, listConfig{
			format: formatText,
			filter: dtrace.Probe{Provider: long},
		})
		assert.ErrorIs(t, err, dtrace.ErrInvalidArgument)
		assert.Empty(t, lib.Filters(), "invalid filter reached libdtrace")
	})
}
