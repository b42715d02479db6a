// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package probe exercises a [grdb.Source] through guarded buffers and
// validates everything that comes back.
//
// Every foreign call goes through the same discipline: allocate (or
// refill) a guarded buffer, make the call with the usable region,
// scan the sentinels before touching the result, then validate that
// every offset in the returned record stays inside the usable region
// and every string is terminated. A progressive retry loop handles
// the buffer-exhaustion signal by doubling the buffer, never reusing
// a buffer across retries so sentinel state from a failed call cannot
// mask a later violation.
//
// After structural validation passes, the validator performs an
// aggressive read: it touches every byte of every string and folds
// them into an accumulator. Under a source that hands out genuinely
// bad offsets this is the crash-test that surfaces them.
package probe
