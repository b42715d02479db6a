// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package pattern derives a deterministic 32-bit test pattern from a
// file offset. The pattern is a pure function of offset: both the
// writer and the verifier call the same free functions, so a file
// written by any strategy can be checked byte-for-byte without any
// shared state or stored metadata.
//
// Each 4-byte-aligned offset maps to one pattern word built from the
// word index i = offset/4:
//
//	b0 = (i >> 16) & 0xFF
//	b1 = (i >>  8) & 0xFF
//	b2 =  i        & 0xFF
//	b3 =  b0 ^ b1 ^ b2 ^ 0x55
//
// laid out big-endian, so every 4-byte window is unique for offsets
// below 2^26 and the checksum byte makes a torn or reordered write
// detectable at its boundary.
package pattern
