// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/fubarnetes/dtrace/internal/pkg/native"
)

// ProbeID is the numeric identifier libdtrace assigns a probe.
type ProbeID uint32

// Probe describes one probe known to libdtrace.
type Probe struct {
	ID       ProbeID `json:"id" yaml:"id"`
	Provider string  `json:"provider" yaml:"provider"`
	Module   string  `json:"module" yaml:"module"`
	Function string  `json:"function" yaml:"function"`
	Name     string  `json:"name" yaml:"name"`
}

// String returns the probe description in D syntax,
// provider:module:function:name.
func (p Probe) String() string {
	return strings.Join([]string{p.Provider, p.Module, p.Function, p.Name}, ":")
}

var errInvalidUTF8 = errors.New("not valid UTF-8")

// DecodeError is returned for a probe record with a field that is not
// valid text. The record is not delivered.
type DecodeError struct {
	ID ProbeID
	// Field is the name of the offending field, such as "function".
	Field string
	// Raw holds the field's bytes up to the first NUL.
	Raw []byte
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("dtrace: probe %d: %s %q: %v", e.ID, e.Field, e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// PanicError is returned by an enumeration whose consumer panicked. No
// probes are delivered after the panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("dtrace: probe consumer panicked: %v", e.Value)
}

// Unwrap returns Value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// decodeField returns the text in b before the first NUL. A buffer without
// a NUL is taken whole.
func decodeField(b []byte) (string, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	return string(b), nil
}

func probeFromDesc(d *native.ProbeDesc) (Probe, error) {
	p := Probe{ID: ProbeID(d.ID)}
	fields := []struct {
		name string
		raw  []byte
		dst  *string
	}{
		{"provider", d.Provider[:], &p.Provider},
		{"module", d.Module[:], &p.Module},
		{"function", d.Function[:], &p.Function},
		{"name", d.Name[:], &p.Name},
	}
	for _, f := range fields {
		s, err := decodeField(f.raw)
		if err != nil {
			raw, _, _ := bytes.Cut(f.raw, []byte{0})
			return Probe{}, &DecodeError{
				ID:    p.ID,
				Field: f.name,
				Raw:   bytes.Clone(raw),
				Err:   err,
			}
		}
		*f.dst = s
	}
	return p, nil
}

// desc encodes p as a libdtrace probe description filter.
func (p Probe) desc() (native.ProbeDesc, error) {
	d := native.ProbeDesc{ID: uint32(p.ID)}
	err := errors.Join(
		encodeField(d.Provider[:], "provider", p.Provider),
		encodeField(d.Module[:], "module", p.Module),
		encodeField(d.Function[:], "function", p.Function),
		encodeField(d.Name[:], "name", p.Name),
	)
	if err != nil {
		return native.ProbeDesc{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return d, nil
}

// encodeField copies s into dst, leaving room for the terminating NUL.
func encodeField(dst []byte, field, s string) error {
	if strings.IndexByte(s, 0) >= 0 {
		return fmt.Errorf("%s %q contains NUL", field, s)
	}
	if len(s) >= len(dst) {
		return fmt.Errorf("%s %q longer than %d bytes", field, s, len(dst)-1)
	}
	copy(dst, s)
	return nil
}

// Probes calls fn once for every probe libdtrace knows about, in the order
// libdtrace enumerates them. fn runs synchronously on the calling goroutine
// and must not call methods of h.
//
// Records that cannot be decoded are skipped and reported, as
// [*DecodeError] values joined into the returned error, once enumeration
// has finished. A panic in fn stops delivery and is returned as a
// [*PanicError]. Finding no probes is not an error.
//
// ctx is checked before enumeration starts. An enumeration in progress
// cannot be stopped.
func (h *Handle) Probes(ctx context.Context, fn func(Probe)) error {
	return h.probes(ctx, nil, fn)
}

// ProbesMatching is like [Handle.Probes] but only enumerates probes
// matching filter. Empty fields match anything and non-empty ones are
// matched by libdtrace as glob patterns. A zero ID matches any probe.
//
// A filter field that does not fit its libdtrace buffer returns
// [ErrInvalidArgument].
func (h *Handle) ProbesMatching(ctx context.Context, filter Probe, fn func(Probe)) error {
	d, err := filter.desc()
	if err != nil {
		return err
	}
	return h.probes(ctx, &d, fn)
}

func (h *Handle) probes(ctx context.Context, filter *native.ProbeDesc, fn func(Probe)) error {
	if fn == nil {
		return errNilFunc
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.native == nil {
		return ErrClosed
	}

	_, span := h.tracer.Start(ctx, "dtrace.Probes")
	defer span.End()

	it := &iteration{fn: fn, logger: h.logger}
	h.native.ProbeIter(filter, it.record)

	span.SetAttributes(
		attribute.Int("dtrace.probes.count", it.delivered),
		attribute.Int("dtrace.probes.skipped", len(it.errs)),
	)
	h.logger.Debug(
		"enumerated probes",
		"delivered", it.delivered,
		"skipped", len(it.errs),
		"filtered", filter != nil,
	)

	err := it.err()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// iteration bridges one native enumeration to a consumer.
type iteration struct {
	fn     func(Probe)
	logger *slog.Logger

	delivered int
	errs      []error
	panicked  *PanicError
}

func (it *iteration) record(d *native.ProbeDesc) {
	if it.panicked != nil {
		return
	}

	p, err := probeFromDesc(d)
	if err != nil {
		it.logger.Warn("skipping malformed probe", "id", d.ID, "error", err)
		it.errs = append(it.errs, err)
		return
	}
	it.deliver(p)
}

func (it *iteration) deliver(p Probe) {
	defer func() {
		if r := recover(); r != nil {
			it.panicked = &PanicError{Value: r, Stack: debug.Stack()}
			it.logger.Error("probe consumer panicked", "probe", p.String(), "panic", r)
		}
	}()
	it.fn(p)
	it.delivered++
}

func (it *iteration) err() error {
	if it.panicked != nil {
		return errors.Join(append([]error{it.panicked}, it.errs...)...)
	}
	return errors.Join(it.errs...)
}
