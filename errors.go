// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import (
	"errors"
	"fmt"
)

// Kind classifies an [Error].
type Kind uint8

const (
	// KindOther is any native error not given its own Kind. The code is
	// kept in [Error.Code].
	KindOther Kind = iota
	// KindInvalidArgument is an invalid argument (EINVAL).
	KindInvalidArgument
	// KindUnsupportedVersion means the requested API version is greater
	// than the library's (EDT_VERSION).
	KindUnsupportedVersion
	// KindUnsupportedMinimumVersion means the requested API version is
	// less than the minimum committed one (EDT_OVERSION).
	KindUnsupportedMinimumVersion
	// KindUnsupportedLibelfVersion means libelf is out of date with
	// respect to libdtrace (EDT_ELFVERSION).
	KindUnsupportedLibelfVersion
	// KindDeviceNotAvailable means the DTrace device is not available
	// (EDT_NOENT).
	KindDeviceNotAvailable
	// KindDeviceBusy means the DTrace device is busy, for example because
	// the kernel debugger is active (EDT_BUSY).
	KindDeviceBusy
	// KindInsufficientPrivileges means the caller may not use DTrace
	// (EDT_ACCESS).
	KindInsufficientPrivileges
	// KindMemoryAllocation is a native allocation failure (EDT_NOMEM).
	KindMemoryAllocation
	// KindUnsupportedDIFVersion means libdtrace uses a newer DIF version
	// than the driver (EDT_DIFVERS).
	KindUnsupportedDIFVersion
	// KindTypeSystem is a failed call into the type system, libctf
	// (EDT_CTF).
	KindTypeSystem
)

var kindStrings = [...]string{
	KindOther:                     "other",
	KindInvalidArgument:           "invalid argument",
	KindUnsupportedVersion:        "unsupported version",
	KindUnsupportedMinimumVersion: "unsupported minimum version",
	KindUnsupportedLibelfVersion:  "unsupported libelf version",
	KindDeviceNotAvailable:        "device not available",
	KindDeviceBusy:                "device busy",
	KindInsufficientPrivileges:    "insufficient privileges",
	KindMemoryAllocation:          "memory allocation",
	KindUnsupportedDIFVersion:     "unsupported DIF version",
	KindTypeSystem:                "type system",
}

func (k Kind) String() string {
	if int(k) < len(kindStrings) {
		return kindStrings[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

var kindMessages = [...]string{
	KindInvalidArgument:           "invalid argument",
	KindUnsupportedVersion:        "the requested version is greater than the current DTrace version",
	KindUnsupportedMinimumVersion: "the requested version is less than the minimum committed DTrace version",
	KindUnsupportedLibelfVersion:  "the libelf library is out of date with respect to the libdtrace library",
	KindDeviceNotAvailable:        "the DTrace device is not available",
	KindDeviceBusy:                "the DTrace device is busy",
	KindInsufficientPrivileges:    "insufficient privileges to use DTrace",
	KindMemoryAllocation:          "unable to allocate memory",
	KindUnsupportedDIFVersion:     "the libdtrace library uses a newer DIF version than the DTrace driver",
	KindTypeSystem:                "a call into the type system failed",
}

// Error is a failure reported by libdtrace.
type Error struct {
	Kind Kind
	// Code is the native error code.
	Code Errno
}

// Sentinel errors for use with [errors.Is]. They match any [Error] of the
// same Kind.
var (
	ErrInvalidArgument           = &Error{Kind: KindInvalidArgument, Code: errnoInvalidArgument}
	ErrUnsupportedVersion        = &Error{Kind: KindUnsupportedVersion, Code: EDT_VERSION}
	ErrUnsupportedMinimumVersion = &Error{Kind: KindUnsupportedMinimumVersion, Code: EDT_OVERSION}
	ErrUnsupportedLibelfVersion  = &Error{Kind: KindUnsupportedLibelfVersion, Code: EDT_ELFVERSION}
	ErrDeviceNotAvailable        = &Error{Kind: KindDeviceNotAvailable, Code: EDT_NOENT}
	ErrDeviceBusy                = &Error{Kind: KindDeviceBusy, Code: EDT_BUSY}
	ErrInsufficientPrivileges    = &Error{Kind: KindInsufficientPrivileges, Code: EDT_ACCESS}
	ErrMemoryAllocation          = &Error{Kind: KindMemoryAllocation, Code: EDT_NOMEM}
	ErrUnsupportedDIFVersion     = &Error{Kind: KindUnsupportedDIFVersion, Code: EDT_DIFVERS}
	ErrTypeSystem                = &Error{Kind: KindTypeSystem, Code: EDT_CTF}
)

// ErrorFromCode returns the Error for a native error code. Every code maps
// to exactly one Error; codes without a Kind of their own get [KindOther].
func ErrorFromCode(code int) *Error {
	e := Errno(code)
	return &Error{Kind: kindOf(e), Code: e}
}

func kindOf(e Errno) Kind {
	// EINVAL is not in the EDT_* namespace and is checked first.
	if e == errnoInvalidArgument {
		return KindInvalidArgument
	}

	switch e {
	case EDT_VERSION:
		return KindUnsupportedVersion
	case EDT_OVERSION:
		return KindUnsupportedMinimumVersion
	case EDT_ELFVERSION:
		return KindUnsupportedLibelfVersion
	case EDT_NOENT:
		return KindDeviceNotAvailable
	case EDT_BUSY:
		return KindDeviceBusy
	case EDT_ACCESS:
		return KindInsufficientPrivileges
	case EDT_NOMEM:
		return KindMemoryAllocation
	case EDT_DIFVERS:
		return KindUnsupportedDIFVersion
	case EDT_CTF:
		return KindTypeSystem
	default:
		return KindOther
	}
}

func (e *Error) Error() string {
	if e.Kind != KindOther && int(e.Kind) < len(kindMessages) {
		return "dtrace: " + kindMessages[e.Kind]
	}
	if e.Code.known() {
		return fmt.Sprintf("dtrace: %s (%s)", e.Code.Error(), e.Code.Name())
	}
	return fmt.Sprintf("dtrace: error %d", int(e.Code))
}

// Is reports whether target is an *Error of the same Kind. For
// [KindOther] the codes must match as well.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return e.Kind != KindOther || t.Code == e.Code
}

// Unwrap returns the Errno for codes in the EDT_* namespace.
func (e *Error) Unwrap() error {
	if e.Code.known() {
		return e.Code
	}
	return nil
}

// ErrClosed is returned when a [Handle] is used after [Open] released it.
var ErrClosed = errors.New("dtrace: handle is closed")
