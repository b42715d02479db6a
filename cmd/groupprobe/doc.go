// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Groupprobe exercises a group database source through guarded
// buffers and reports any write outside the caller-owned region. Every
// foreign call runs against an mmap-allocated buffer bracketed by
// sentinel guard bytes; the probe checks the sentinels after each call
// and validates that every returned offset stays inside the buffer.
//
// The self-test mode turns the harness on itself: it injects known
// bugs through a misbehaving source wrapper and fails if any injected
// bug goes undetected.
package main
