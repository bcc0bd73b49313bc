// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build cgo && (darwin || freebsd || illumos || solaris)

package native

/*
#include <sys/types.h>
#include <dtrace.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// iterState is the Go side of one dtrace_probe_iter call. It reaches the
// callback through the opaque arg pointer as a cgo.Handle.
type iterState struct {
	fn IterFunc

	panicked  bool
	recovered any
}

//export goProbeIter
func goProbeIter(_ *C.dtrace_hdl_t, pdp *C.dtrace_probedesc_t, arg unsafe.Pointer) C.int {
	st := cgo.Handle(uintptr(arg)).Value().(*iterState)
	if st.panicked {
		return IterContinue
	}
	st.call(pdp)
	return IterContinue
}

func (st *iterState) call(pdp *C.dtrace_probedesc_t) {
	defer func() {
		if r := recover(); r != nil {
			st.panicked, st.recovered = true, r
		}
	}()

	// pdp is owned by libdtrace and not valid after we return.
	var desc ProbeDesc
	fromC(&desc, pdp)
	st.fn(&desc)
}
