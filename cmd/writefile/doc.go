// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Writefile creates a file of a given size filled with the
// deterministic offset pattern, using a selectable write strategy
// (buffered stream, whole-memory, positional, vectored, or
// positional-vectored), and verifies existing files against the same
// pattern. Strategy choice never changes the bytes: every mode
// produces an identical file for the same size.
package main
