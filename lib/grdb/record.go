// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package grdb

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors returned by Source implementations.
var (
	// ErrBufferTooSmall is the exhaustion signal: the record does not
	// fit in the caller's buffer. Recoverable by retrying with a
	// larger buffer.
	ErrBufferTooSmall = errors.New("grdb: buffer too small for record")

	// ErrNotFound reports that no group matched the lookup key.
	ErrNotFound = errors.New("grdb: group not found")

	// ErrCursorBusy reports an attempt to open a second enumeration
	// cursor while one is already open on the same source.
	ErrCursorBusy = errors.New("grdb: enumeration cursor already open")
)

// MemberTableEnd terminates the member offset table inside the buffer,
// playing the role of the NULL sentinel pointer in the C layout.
const MemberTableEnd = 0xFFFFFFFF

// Record is a view into a caller-supplied buffer. Every field is a
// byte offset into that buffer, never a pointer: the record carries no
// storage of its own. Offsets are what the probe validates: a
// conforming Source only ever produces offsets inside [0, len(buf)).
type Record struct {
	// NameOff is the offset of the NUL-terminated group name.
	NameOff int32
	// PasswdOff is the offset of the NUL-terminated password
	// placeholder, or -1 when the group has none.
	PasswdOff int32
	// GID is the numeric group identifier.
	GID uint32
	// MemberTableOff is the offset of the member table: 4-byte
	// big-endian string offsets terminated by MemberTableEnd.
	MemberTableOff int32
}

// cstring reads a NUL-terminated string at off. Reports an error when
// the offset escapes the buffer or no terminator is found before the
// end of the buffer.
func cstring(buf []byte, off int32) (string, error) {
	if off < 0 || int(off) >= len(buf) {
		return "", fmt.Errorf("grdb: string offset %d outside buffer of %d bytes", off, len(buf))
	}
	for i := int(off); i < len(buf); i++ {
		if buf[i] == 0 {
			return string(buf[off:i]), nil
		}
	}
	return "", fmt.Errorf("grdb: string at offset %d not terminated within buffer", off)
}

// Name decodes the group name from buf.
func (r *Record) Name(buf []byte) (string, error) {
	return cstring(buf, r.NameOff)
}

// Passwd decodes the password placeholder from buf. The second return
// is false when the record carries no password field.
func (r *Record) Passwd(buf []byte) (string, bool, error) {
	if r.PasswdOff < 0 {
		return "", false, nil
	}
	s, err := cstring(buf, r.PasswdOff)
	return s, err == nil, err
}

// Members walks the member table in buf and decodes every member name.
func (r *Record) Members(buf []byte) ([]string, error) {
	if r.MemberTableOff < 0 || int(r.MemberTableOff) >= len(buf) {
		return nil, fmt.Errorf("grdb: member table offset %d outside buffer", r.MemberTableOff)
	}
	var members []string
	pos := int(r.MemberTableOff)
	for {
		if pos+4 > len(buf) {
			return nil, fmt.Errorf("grdb: member table ran past buffer at offset %d", pos)
		}
		entry := binary.BigEndian.Uint32(buf[pos:])
		if entry == MemberTableEnd {
			return members, nil
		}
		name, err := cstring(buf, int32(entry))
		if err != nil {
			return nil, err
		}
		members = append(members, name)
		pos += 4
	}
}
