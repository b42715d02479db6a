// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package sizefmt parses and formats byte sizes with binary
// multipliers. [ParseSize] accepts decimal, floating-point, and 0x hex
// literals with an optional case-insensitive suffix (B, K/KB, M/MB,
// G/GB, T/TB); [FormatSize] renders a count in the largest unit in
// which the value is at least one.
package sizefmt
