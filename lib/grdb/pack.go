// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package grdb

import "encoding/binary"

// groupEntry is the parsed, in-memory form of one group line. Only
// the packer and sources see it; everything outside the package works
// with Record views.
type groupEntry struct {
	name    string
	passwd  string
	gid     uint32
	members []string
}

// packedSize returns the buffer space the entry needs: the member
// offset table including its end marker, then every string with its
// NUL terminator.
func (g *groupEntry) packedSize() int {
	size := 4 * (len(g.members) + 1)
	size += len(g.name) + 1
	if g.passwd != "" {
		size += len(g.passwd) + 1
	}
	for _, m := range g.members {
		size += len(m) + 1
	}
	return size
}

// packRecord serializes g into buf: member table first, then the
// name, password, and member strings, each NUL-terminated. Returns
// ErrBufferTooSmall without touching buf when the record does not
// fit. Never writes outside buf; that property is exactly what the
// probe's guard regions verify.
func packRecord(g *groupEntry, buf []byte) (*Record, error) {
	if g.packedSize() > len(buf) {
		return nil, ErrBufferTooSmall
	}

	table := 0
	pos := 4 * (len(g.members) + 1)

	putString := func(s string) int32 {
		off := int32(pos)
		copy(buf[pos:], s)
		buf[pos+len(s)] = 0
		pos += len(s) + 1
		return off
	}

	record := &Record{
		GID:            g.gid,
		MemberTableOff: int32(table),
		PasswdOff:      -1,
	}

	for i, m := range g.members {
		binary.BigEndian.PutUint32(buf[table+4*i:], uint32(putString(m)))
	}
	binary.BigEndian.PutUint32(buf[table+4*len(g.members):], MemberTableEnd)

	record.NameOff = putString(g.name)
	if g.passwd != "" {
		record.PasswdOff = putString(g.passwd)
	}
	return record, nil
}
