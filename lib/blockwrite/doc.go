// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package blockwrite creates files filled with the deterministic
// offset pattern under one of five I/O strategies, and verifies them
// byte-for-byte afterwards.
//
// Strategy choice is orthogonal to content: every strategy produces a
// byte-identical file for the same size, because each one derives its
// bytes from [pattern.Fill] at the file offset it is about to write.
// The strategies differ only in which kernel interface carries the
// bytes:
//
//   - [Stream] buffered sequential writes
//   - [WholeMemory] one in-memory image, written in a retry loop
//   - [Positional] pwrite at explicit offsets
//   - [Vectored] writev in descriptor batches
//   - [PositionalVectored] pwritev in descriptor batches
//
// [Verify] reads a file back sequentially and reports every byte that
// differs from the pattern, so a write path that tears, reorders, or
// drops a chunk is caught at the exact offset where it happened.
package blockwrite
