// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build cgo && (darwin || freebsd || illumos || solaris)

package native

/*
#cgo LDFLAGS: -ldtrace
#include <sys/types.h>
#include <stdint.h>
#include <dtrace.h>

extern int goProbeIter(dtrace_hdl_t *, dtrace_probedesc_t *, void *);

static void probe_iter(dtrace_hdl_t *dtp, const dtrace_probedesc_t *pdp, uintptr_t arg) {
	(void) dtrace_probe_iter(dtp, pdp, (dtrace_probe_f *)goProbeIter, (void *)arg);
}
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

type library struct{}

func defaultLibrary() Library { return library{} }

func (library) Open(version, flags int) (Handle, int) {
	var errp C.int
	dtp := C.dtrace_open(C.int(version), C.int(flags), &errp)
	if dtp == nil {
		return nil, int(errp)
	}
	return &handle{dtp: dtp}, 0
}

type handle struct {
	dtp *C.dtrace_hdl_t
}

func (h *handle) Close() {
	C.dtrace_close(h.dtp)
	h.dtp = nil
}

func (h *handle) ProbeIter(filter *ProbeDesc, fn IterFunc) {
	st := &iterState{fn: fn}
	arg := cgo.NewHandle(st)
	defer arg.Delete()

	var pdp *C.dtrace_probedesc_t
	if filter != nil {
		var desc C.dtrace_probedesc_t
		toC(&desc, filter)
		pdp = &desc
	}

	C.probe_iter(h.dtp, pdp, C.uintptr_t(arg))

	// Unwinding through dtrace_probe_iter is not possible, so a panic
	// from fn is parked by the callback and resumed here.
	if st.panicked {
		panic(st.recovered)
	}
}

// charBytes views a fixed-size C char array as a byte slice.
func charBytes(p *C.char, n int) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

func fromC(dst *ProbeDesc, src *C.dtrace_probedesc_t) {
	dst.ID = uint32(src.dtpd_id)
	copy(dst.Provider[:], charBytes(&src.dtpd_provider[0], len(src.dtpd_provider)))
	copy(dst.Module[:], charBytes(&src.dtpd_mod[0], len(src.dtpd_mod)))
	copy(dst.Function[:], charBytes(&src.dtpd_func[0], len(src.dtpd_func)))
	copy(dst.Name[:], charBytes(&src.dtpd_name[0], len(src.dtpd_name)))
}

func toC(dst *C.dtrace_probedesc_t, src *ProbeDesc) {
	dst.dtpd_id = C.dtrace_id_t(src.ID)
	copy(charBytes(&dst.dtpd_provider[0], len(dst.dtpd_provider)), src.Provider[:])
	copy(charBytes(&dst.dtpd_mod[0], len(dst.dtpd_mod)), src.Module[:])
	copy(charBytes(&dst.dtpd_func[0], len(dst.dtpd_func)), src.Function[:])
	copy(charBytes(&dst.dtpd_name[0], len(dst.dtpd_name)), src.Name[:])
}
