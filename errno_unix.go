// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package dtrace

import "golang.org/x/sys/unix"

const errnoInvalidArgument = Errno(unix.EINVAL)
