// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/fubarnetes/dtrace"
	"github.com/fubarnetes/dtrace/internal/pkg/native"
)

const unknown = "unknown"

var getRevision = sync.OnceValue(func() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return unknown
	}
	return vcsRevision(buildInfo.Settings)
})

// vcsRevision returns the VCS revision recorded in the build settings,
// suffixed with "-dirty" for builds from a modified tree.
func vcsRevision(settings []debug.BuildSetting) string {
	rev, modified := unknown, false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified {
		rev += "-dirty"
	}
	return rev
}

// version is what -version prints.
type version struct {
	Release  string
	Revision string
	// API is the libdtrace API version requested when DTRACE_API_VERSION
	// is unset.
	API int
	Go  string
}

func newVersion() version {
	return version{
		Release:  dtrace.Version(),
		Revision: getRevision(),
		API:      native.Version,
		Go:       fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	}
}

func (v version) String() string {
	return fmt.Sprintf("%s %s (rev %s, libdtrace API %d, %s)", programName, v.Release, v.Revision, v.API, v.Go)
}
