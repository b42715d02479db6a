// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package grdb provides reentrant-style group database access: the
// caller supplies the byte buffer, the database serializes one group
// record into it and returns a [Record] that is nothing but offsets
// into that buffer. The caller owning the storage is the contract the
// probe exists to verify: a correct [Source] never writes past the
// declared length and never hands back an offset that escapes it.
//
// A [Source] that cannot fit a record in the buffer it was given
// returns [ErrBufferTooSmall]; the caller is expected to retry with a
// larger buffer. This mirrors the ERANGE discipline of the POSIX
// getgrnam_r family.
//
// [FileSource] reads colon-separated group files (the /etc/group
// format). [FaultSource] wraps any Source and injects the specific
// bugs the probe is built to catch; it exists so the detection
// machinery can be tested against a source that actually misbehaves.
package grdb
