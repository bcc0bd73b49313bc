// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !cgo || !(darwin || freebsd || illumos || solaris)

package native

// edtNoEnt is EDT_NOENT, "dtrace device not available".
const edtNoEnt = 1063

type unsupported struct{}

func defaultLibrary() Library { return unsupported{} }

func (unsupported) Open(int, int) (Handle, int) { return nil, edtNoEnt }
