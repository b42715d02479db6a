// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package report collects probe findings into a machine-readable
// document encoded as deterministic CBOR (RFC 8949 Core Deterministic
// Encoding): the same findings always produce identical bytes, so two
// runs against the same database can be diffed as files.
package report
