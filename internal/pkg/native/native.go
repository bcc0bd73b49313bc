// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package native is the boundary with the libdtrace C library.
//
// Nothing above this package touches C memory. Records handed to an
// [IterFunc] are Go-owned copies of the native probe descriptions.
package native

// Version is the libdtrace API revision requested by default
// (DTRACE_VERSION).
const Version = 3

// Field capacities of dtrace_probedesc_t, in bytes, including the
// terminating NUL.
const (
	ProvNameLen = 64  // DTRACE_PROVNAMELEN
	ModNameLen  = 64  // DTRACE_MODNAMELEN
	FuncNameLen = 192 // DTRACE_FUNCNAMELEN
	NameLen     = 64  // DTRACE_NAMELEN
)

// IterContinue is the status returned to libdtrace for every record.
// Iteration cannot be stopped early from Go.
const IterContinue = 0

// ProbeDesc mirrors the layout of dtrace_probedesc_t.
type ProbeDesc struct {
	ID       uint32
	Provider [ProvNameLen]byte
	Module   [ModNameLen]byte
	Function [FuncNameLen]byte
	Name     [NameLen]byte
}

// IterFunc is called once per probe by [Handle.ProbeIter]. The ProbeDesc
// is only valid for the duration of the call.
type IterFunc func(*ProbeDesc)

// Library opens libdtrace handles.
type Library interface {
	// Open calls dtrace_open. On failure the returned Handle is nil and
	// the int holds the native error code.
	Open(version, flags int) (Handle, int)
}

// Handle is an open dtrace_hdl_t. Close must be called exactly once, and
// no method may be called after it.
type Handle interface {
	// ProbeIter calls dtrace_probe_iter. A nil filter selects all probes.
	ProbeIter(filter *ProbeDesc, fn IterFunc)
	// Close calls dtrace_close.
	Close()
}

// override replaces the platform library when set.
var override Library

// Default returns the libdtrace implementation for this platform, or the
// Library installed with [SetDefault].
func Default() Library {
	if override != nil {
		return override
	}
	return defaultLibrary()
}

// SetDefault makes [Default] return l until restore is called. It is meant
// for tests and is not safe to call concurrently with Default.
func SetDefault(l Library) (restore func()) {
	prev := override
	override = l
	return func() { override = prev }
}
