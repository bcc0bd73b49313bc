// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFromCode(t *testing.T) {
	testCases := []struct {
		code int
		kind Kind
		want error
	}{
		{code: 22, kind: KindInvalidArgument, want: ErrInvalidArgument},
		{code: 1000, kind: KindUnsupportedVersion, want: ErrUnsupportedVersion},
		{code: 1072, kind: KindUnsupportedMinimumVersion, want: ErrUnsupportedMinimumVersion},
		{code: 1066, kind: KindUnsupportedLibelfVersion, want: ErrUnsupportedLibelfVersion},
		{code: 1063, kind: KindDeviceNotAvailable, want: ErrDeviceNotAvailable},
		{code: 1061, kind: KindDeviceBusy, want: ErrDeviceBusy},
		{code: 1062, kind: KindInsufficientPrivileges, want: ErrInsufficientPrivileges},
		{code: 1007, kind: KindMemoryAllocation, want: ErrMemoryAllocation},
		{code: 1025, kind: KindUnsupportedDIFVersion, want: ErrUnsupportedDIFVersion},
		{code: 1004, kind: KindTypeSystem, want: ErrTypeSystem},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			err := ErrorFromCode(tc.code)
			assert.Equal(t, tc.kind, err.Kind)
			assert.Equal(t, Errno(tc.code), err.Code)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.want.(*Error).Code, err.Code, "sentinel carries a different code")
		})
	}
}

func TestErrorFromCodeOther(t *testing.T) {
	for _, code := range []int{0, -1, 1, 21, 23, 999, 1005, 1012, 1075, 1076, 5000} {
		err := ErrorFromCode(code)
		assert.Equal(t, KindOther, err.Kind, "code %d", code)
		assert.Equal(t, Errno(code), err.Code, "code %d", code)
	}
}

func TestErrorFromCodeTable(t *testing.T) {
	// Every specific Kind is reached by exactly one code of the table, plus
	// EINVAL which is outside it.
	seen := map[Kind]int{}
	for code := range errnoTable {
		seen[ErrorFromCode(int(code)).Kind]++
	}
	seen[ErrorFromCode(22).Kind]++

	for k := KindInvalidArgument; k <= KindTypeSystem; k++ {
		assert.Equal(t, 1, seen[k], "kind %s", k)
	}
	assert.Equal(t, len(errnoTable)-9, seen[KindOther])
}

func TestErrnoTable(t *testing.T) {
	assert.Len(t, errnoTable, 76)
	for code := EDT_VERSION; code <= EDT_CANTLOAD; code++ {
		assert.True(t, code.known(), "code %d missing", int(code))
	}
	assert.False(t, Errno(22).known())
	assert.False(t, Errno(1076).known())
}

func TestErrnoStrings(t *testing.T) {
	assert.Equal(t, "EDT_NOENT", EDT_NOENT.Name())
	assert.Equal(t, "dtrace device not available", EDT_NOENT.Error())
	assert.Equal(t, "Errno(5000)", Errno(5000).Name())
	assert.Equal(t, "dtrace error 5000", Errno(5000).Error())
}

func TestErrorIs(t *testing.T) {
	err := error(ErrorFromCode(1063))

	assert.ErrorIs(t, err, ErrDeviceNotAvailable)
	assert.ErrorIs(t, err, EDT_NOENT)
	assert.NotErrorIs(t, err, ErrDeviceBusy)
	assert.NotErrorIs(t, err, EDT_BUSY)

	other := error(ErrorFromCode(1012))
	assert.ErrorIs(t, other, &Error{Kind: KindOther, Code: EDT_NOPROBE})
	assert.ErrorIs(t, other, EDT_NOPROBE)
	assert.NotErrorIs(t, other, &Error{Kind: KindOther, Code: EDT_NOPROV})

	var e *Error
	require.ErrorAs(t, other, &e)
	assert.Equal(t, EDT_NOPROBE, e.Code)

	assert.Nil(t, ErrorFromCode(5000).Unwrap())
	assert.Nil(t, ErrorFromCode(22).Unwrap())
}

func TestErrorMessage(t *testing.T) {
	testCases := []struct {
		code int
		want string
	}{
		{code: 1063, want: "dtrace: the DTrace device is not available"},
		{code: 22, want: "dtrace: invalid argument"},
		{code: 1012, want: "dtrace: unknown probe name (EDT_NOPROBE)"},
		{code: 4242, want: "dtrace: error 4242"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ErrorFromCode(tc.code).Error())
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "device not available", KindDeviceNotAvailable.String())
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "Kind(200)", Kind(200).String())
}

func TestErrClosedIsNotError(t *testing.T) {
	var e *Error
	assert.False(t, errors.As(ErrClosed, &e))
}

func TestErrorIsNilTarget(t *testing.T) {
	err := error(ErrorFromCode(1063))

	assert.NotErrorIs(t, err, (*Error)(nil))
	assert.False(t, ErrorFromCode(1005).Is((*Error)(nil)))
}

func TestErrorMessageUnknownKind(t *testing.T) {
	testCases := []struct {
		name string
		err  *Error
		want string
	}{
		{name: "KnownCode", err: &Error{Kind: 42, Code: EDT_NOPROBE}, want: "dtrace: unknown probe name (EDT_NOPROBE)"},
		{name: "UnknownCode", err: &Error{Kind: 200, Code: 4242}, want: "dtrace: error 4242"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.want, tc.err.Error())
			})
		})
	}
}
