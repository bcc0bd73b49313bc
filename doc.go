// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

/*
Package dtrace provides Go bindings for libdtrace.

A [Handle] to libdtrace only exists for the duration of a call to [Open]:

	err := dtrace.Open(ctx, func(h *dtrace.Handle) error {
		return h.Probes(ctx, func(p dtrace.Probe) {
			fmt.Println(p.ID, p)
		})
	})

Open releases the handle when the function returns, on every path,
including panics. There is no Close method, so a handle can neither be
released twice nor outlive its session.

# Errors

Failures to open libdtrace are returned as [*Error] values, classified by
[Kind]. Use [errors.Is] with the sentinel errors to test for a kind:

	if errors.Is(err, dtrace.ErrInsufficientPrivileges) {
		// Run as root.
	}

The native error number is available as [Error.Code].

# Enumeration

[Handle.Probes] and [Handle.ProbesMatching] deliver probes one at a time,
synchronously, in the order libdtrace yields them. Nothing is buffered.
Records whose names are not valid UTF-8 are skipped and reported as
[*DecodeError] values once enumeration has finished. Enumeration cannot be
stopped early.

# Platforms

The native library is used when building with cgo on darwin, freebsd,
illumos and solaris. Elsewhere [Open] always fails with
[ErrDeviceNotAvailable].
*/
package dtrace
