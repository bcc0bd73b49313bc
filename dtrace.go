// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fubarnetes/dtrace/internal/pkg/native"
)

const tracerName = "github.com/fubarnetes/dtrace"

var errNilFunc = errors.New("dtrace: nil function")

// Handle is an open libdtrace handle.
//
// A Handle only exists inside the function passed to [Open], which releases
// it when that function returns. Methods called after that return
// [ErrClosed].
//
// A Handle is safe for concurrent use. Calls are serialized: only one
// enumeration runs inside libdtrace at a time. A probe consumer must not
// call methods of the Handle delivering to it on the same goroutine; that
// call waits for the enumeration it is part of and never returns. A call
// made from another goroutine waits until the enumeration has finished.
type Handle struct {
	logger *slog.Logger
	tracer trace.Tracer

	mu sync.Mutex
	// native is nil once released.
	native native.Handle
}

// Open opens libdtrace, calls fn with the resulting [Handle], and releases
// the handle when fn returns. The handle is released exactly once whether fn
// returns normally, returns an error, or panics; a panic continues after the
// release. The error returned by fn is returned unchanged.
//
// If libdtrace cannot be opened fn is not called and an [*Error] is
// returned. Open does not retry.
//
// ctx is checked before libdtrace is opened and parents the spans created
// for native calls. It does not interrupt fn.
func Open(ctx context.Context, fn func(*Handle) error, opts ...Option) error {
	if fn == nil {
		return errNilFunc
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c := newConfig(opts)
	if err := c.validate(); err != nil {
		return err
	}

	tracer := c.tp.Tracer(tracerName, trace.WithInstrumentationVersion(Version()))
	h, err := open(ctx, c, tracer)
	if err != nil {
		return err
	}
	defer h.release()

	return fn(h)
}

func open(ctx context.Context, c config, tracer trace.Tracer) (*Handle, error) {
	_, span := tracer.Start(ctx, "dtrace.Open", trace.WithAttributes(
		attribute.Int("dtrace.version", c.version),
		attribute.String("dtrace.flags", c.flags.String()),
	))
	defer span.End()

	nh, code := c.library.Open(c.version, int(c.flags))
	if nh == nil {
		err := ErrorFromCode(code)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error(
			"failed to open dtrace",
			"error", err,
			"code", code,
			"version", c.version,
			"flags", c.flags,
		)
		return nil, err
	}

	c.logger.Debug("dtrace opened", "version", c.version, "flags", c.flags)
	return &Handle{logger: c.logger, tracer: tracer, native: nh}, nil
}

// release closes the native handle. It waits for a running enumeration.
func (h *Handle) release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.native == nil {
		return
	}
	h.native.Close()
	h.native = nil
	h.logger.Debug("dtrace closed")
}
