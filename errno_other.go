// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package dtrace

// errnoInvalidArgument is EINVAL as libdtrace reports it.
const errnoInvalidArgument Errno = 22
