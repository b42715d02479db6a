// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package guard provides a caller-supplied buffer flanked by sentinel
// regions for detecting out-of-bounds writes from code that receives
// the buffer by address and length.
//
// A [Buffer] is one anonymous mmap region laid out as
//
//	| head guard (64B) | usable region (requested) | tail guard (256B) |
//
// Each guard region starts with a 32-bit magic word and is filled with
// 0x5A; the usable region is pre-filled with 0xAA. The tail guard is
// deliberately larger than the head because overflow past the end is
// the common failure direction. [Buffer.Check] scans both guards and
// reports every byte that no longer matches; a tail mismatch is an
// overflow (critical), a head mismatch an underflow.
//
// The mmap region lives outside the Go heap, so the usable region has
// a stable address for the lifetime of the buffer and the garbage
// collector never moves it. On [Buffer.Release] the whole allocation
// is overwritten with a poison byte and unmapped, so a stale pointer
// retained past release cannot silently read old contents.
package guard
