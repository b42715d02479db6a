// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"encoding/binary"
	"fmt"

	"github.com/osprobe/syscheck/lib/grdb"
)

// readSink keeps the aggressive read's accumulator observable so the
// compiler cannot elide the byte loads.
var readSink uint64

// validateRecord checks that every offset in record stays inside buf
// and every string is NUL-terminated before the end of the usable
// region. Returns the violation count and a description of each.
// Zero violations means the record is structurally valid.
func validateRecord(record *grdb.Record, buf []byte) (int, []string) {
	var problems []string
	bad := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	checkString := func(field string, off int32) {
		if off < 0 || int(off) >= len(buf) {
			bad("%s offset %d outside usable region [0,%d)", field, off, len(buf))
			return
		}
		terminated := false
		for i := int(off); i < len(buf); i++ {
			if buf[i] == 0 {
				terminated = true
				break
			}
		}
		if !terminated {
			bad("%s at offset %d has no terminator before end of region", field, off)
		}
	}

	checkString("name", record.NameOff)
	if record.PasswdOff >= 0 {
		checkString("passwd", record.PasswdOff)
	}

	// Member table: the walk itself must stay inside the region and
	// terminate, and every entry must be a contained, terminated
	// string.
	off := record.MemberTableOff
	if off < 0 || int(off) >= len(buf) {
		bad("member table offset %d outside usable region [0,%d)", off, len(buf))
	} else {
		pos := int(off)
		index := 0
		for {
			if pos+4 > len(buf) {
				bad("member table walk left the usable region at offset %d", pos)
				break
			}
			entry := binary.BigEndian.Uint32(buf[pos:])
			if entry == grdb.MemberTableEnd {
				break
			}
			checkString(fmt.Sprintf("member[%d]", index), int32(entry))
			pos += 4
			index++
		}
	}

	return len(problems), problems
}

// aggressiveRead touches every byte of every string reachable from
// record and folds them into readSink. Call only after validateRecord
// reported zero violations; with a source that lies about containment
// in a way validation missed, this is where it shows.
func aggressiveRead(record *grdb.Record, buf []byte) {
	var sum uint64

	readString := func(off int32) {
		for i := int(off); i < len(buf) && buf[i] != 0; i++ {
			sum += uint64(buf[i])
		}
	}

	readString(record.NameOff)
	if record.PasswdOff >= 0 {
		readString(record.PasswdOff)
	}
	sum += uint64(record.GID)

	pos := int(record.MemberTableOff)
	for pos+4 <= len(buf) {
		entry := binary.BigEndian.Uint32(buf[pos:])
		if entry == grdb.MemberTableEnd {
			break
		}
		readString(int32(entry))
		pos += 4
	}

	readSink += sum
}
