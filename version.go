// Copyright The OpenTelemetry Authors
// SPDX-License-Identifier: Apache-2.0

package dtrace

// Version is the current release version of the dtrace bindings in use.
func Version() string {
	return "v0.1.0"
}
