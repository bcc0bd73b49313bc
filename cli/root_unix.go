// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package main

import "golang.org/x/sys/unix"

// Overwritten in testing.
var geteuid = unix.Geteuid

func isRoot() bool { return geteuid() == 0 }
