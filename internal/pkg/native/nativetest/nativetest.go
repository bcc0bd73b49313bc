// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

// Package nativetest provides an in-memory stand-in for libdtrace.
package nativetest

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/fubarnetes/dtrace/internal/pkg/native"
)

// Desc returns a probe description with the given fields copied into the
// fixed-size buffers. Values longer than a buffer are cut at its capacity,
// leaving no terminating NUL.
func Desc(id uint32, provider, module, function, name string) native.ProbeDesc {
	d := native.ProbeDesc{ID: id}
	copy(d.Provider[:], provider)
	copy(d.Module[:], module)
	copy(d.Function[:], function)
	copy(d.Name[:], name)
	return d
}

// Use installs l as the platform library for the rest of the test.
func Use(t testing.TB, l *Library) {
	t.Helper()
	t.Cleanup(native.SetDefault(l))
}

// Library is a fake [native.Library]. The zero value opens successfully
// and enumerates no probes.
type Library struct {
	// Code, when non-zero, makes every Open fail with it.
	Code int
	// Records are enumerated in order by every ProbeIter call.
	Records []native.ProbeDesc
	// Delay is slept before delivering each record.
	Delay time.Duration

	mu        sync.Mutex
	opens     int
	closes    int
	version   int
	flags     int
	filters   []*native.ProbeDesc
	active    int
	maxActive int
}

var _ native.Library = (*Library)(nil)

// Open implements [native.Library].
func (l *Library) Open(version, flags int) (native.Handle, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.version, l.flags = version, flags
	if l.Code != 0 {
		return nil, l.Code
	}
	l.opens++
	return &handle{lib: l}, 0
}

// Opens returns the number of successful Open calls.
func (l *Library) Opens() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

// Closes returns the number of Close calls.
func (l *Library) Closes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closes
}

// OpenArgs returns the arguments of the last Open call.
func (l *Library) OpenArgs() (version, flags int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version, l.flags
}

// Filters returns the filter passed to each ProbeIter call, nil for
// unfiltered iterations.
func (l *Library) Filters() []*native.ProbeDesc {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*native.ProbeDesc(nil), l.filters...)
}

// MaxConcurrent returns the highest number of ProbeIter calls that were
// running at the same time.
func (l *Library) MaxConcurrent() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxActive
}

func (l *Library) enter(filter *native.ProbeDesc) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if filter != nil {
		f := *filter
		filter = &f
	}
	l.filters = append(l.filters, filter)
	l.active++
	if l.active > l.maxActive {
		l.maxActive = l.active
	}
}

func (l *Library) exit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active--
}

type handle struct {
	lib    *Library
	closed bool
}

func (h *handle) ProbeIter(filter *native.ProbeDesc, fn native.IterFunc) {
	if h.closed {
		panic("nativetest: ProbeIter on closed handle")
	}
	h.lib.enter(filter)
	defer h.lib.exit()

	// One scratch record is reused and wiped between calls, the way
	// libdtrace reuses its own buffers.
	var scratch native.ProbeDesc
	for _, rec := range h.lib.Records {
		if !matches(filter, &rec) {
			continue
		}
		if h.lib.Delay > 0 {
			time.Sleep(h.lib.Delay)
		}
		scratch = rec
		fn(&scratch)
		scratch = native.ProbeDesc{}
	}
}

func (h *handle) Close() {
	if h.closed {
		panic("nativetest: handle closed twice")
	}
	h.closed = true

	h.lib.mu.Lock()
	defer h.lib.mu.Unlock()
	h.lib.closes++
}

// matches is an exact-match version of libdtrace's probe description
// matching: an empty field or zero ID matches anything.
func matches(filter, rec *native.ProbeDesc) bool {
	if filter == nil {
		return true
	}
	if filter.ID != 0 && filter.ID != rec.ID {
		return false
	}
	return fieldMatches(filter.Provider[:], rec.Provider[:]) &&
		fieldMatches(filter.Module[:], rec.Module[:]) &&
		fieldMatches(filter.Function[:], rec.Function[:]) &&
		fieldMatches(filter.Name[:], rec.Name[:])
}

func fieldMatches(pattern, value []byte) bool {
	pattern, _, _ = bytes.Cut(pattern, []byte{0})
	if len(pattern) == 0 {
		return true
	}
	value, _, _ = bytes.Cut(value, []byte{0})
	return bytes.Equal(pattern, value)
}
