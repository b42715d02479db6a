// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package grdb

import "unsafe"

// Fault selects which bug a FaultSource injects.
type Fault int

const (
	// FaultNone delegates untouched.
	FaultNone Fault = iota
	// FaultOverflow writes bytes past the declared end of the
	// caller's buffer, the canonical boundary violation.
	FaultOverflow
	// FaultUnterminated strips the NUL terminator from the group
	// name and every terminator after it, so the name runs to the
	// end of the buffer.
	FaultUnterminated
	// FaultEscape returns a record whose name offset lies outside
	// the buffer.
	FaultEscape
)

// FaultSource wraps a Source and deliberately misbehaves on
// LookupGroup. It exists to prove the probe detects what it claims to
// detect: a harness whose alarms have never fired is untested.
//
// The overflow fault uses unsafe pointer arithmetic on purpose: the
// wrapped buffer is handed over by address and length, and the fault
// models a callee that miscounts that length.
type FaultSource struct {
	Inner Source
	Kind  Fault

	// OverflowBytes is how far past the end FaultOverflow writes
	// (default 3).
	OverflowBytes int
}

// LookupGroup delegates to the inner source and then injects the
// configured fault into the result.
func (f *FaultSource) LookupGroup(name string, buf []byte) (*Record, error) {
	record, err := f.Inner.LookupGroup(name, buf)

	if f.Kind == FaultOverflow && len(buf) > 0 {
		n := f.OverflowBytes
		if n <= 0 {
			n = 3
		}
		// Write past the declared length. The buffer owner's guard
		// region is what catches this.
		past := unsafe.Slice(&buf[0], len(buf)+n)
		for i := 0; i < n; i++ {
			past[len(buf)+i] = byte(i)
		}
	}

	if err != nil {
		return nil, err
	}

	switch f.Kind {
	case FaultUnterminated:
		// Zap every NUL from the name onward; a terminator that
		// happens to belong to a later string would otherwise still
		// terminate the damaged name.
		for i := int(record.NameOff); i >= 0 && i < len(buf); i++ {
			if buf[i] == 0 {
				buf[i] = 'X'
			}
		}
	case FaultEscape:
		record.NameOff = int32(len(buf)) + 16
	}
	return record, nil
}

// LookupGID delegates untouched.
func (f *FaultSource) LookupGID(gid uint32, buf []byte) (*Record, error) {
	return f.Inner.LookupGID(gid, buf)
}

// Groups delegates untouched.
func (f *FaultSource) Groups() (*Cursor, error) {
	return f.Inner.Groups()
}
