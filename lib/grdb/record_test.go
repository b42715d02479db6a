// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package grdb

import (
	"encoding/binary"
	"testing"
)

func TestCString_EscapingOffset(t *testing.T) {
	buf := []byte{'a', 0}
	record := &Record{NameOff: 10}
	if _, err := record.Name(buf); err == nil {
		t.Fatal("expected error for offset past buffer")
	}
	record.NameOff = -1
	if _, err := record.Name(buf); err == nil {
		t.Fatal("expected error for negative offset")
	}
}

func TestCString_Unterminated(t *testing.T) {
	buf := []byte{'a', 'b', 'c'}
	record := &Record{NameOff: 0}
	if _, err := record.Name(buf); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestMembers_TableRunsPastBuffer(t *testing.T) {
	// A table with one entry and no end marker before the buffer ends.
	buf := make([]byte, 6)
	binary.BigEndian.PutUint32(buf, 4) // entry pointing at offset 4
	record := &Record{MemberTableOff: 0}
	if _, err := record.Members(buf); err == nil {
		t.Fatal("expected error for member table escaping buffer")
	}
}

func TestMembers_EntryEscapesBuffer(t *testing.T) {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf, 100) // member string outside buffer
	binary.BigEndian.PutUint32(buf[4:], MemberTableEnd)
	record := &Record{MemberTableOff: 0}
	if _, err := record.Members(buf); err == nil {
		t.Fatal("expected error for member string offset outside buffer")
	}
}

func TestPasswd_Absent(t *testing.T) {
	record := &Record{PasswdOff: -1}
	_, ok, err := record.Passwd([]byte{0})
	if ok || err != nil {
		t.Fatalf("Passwd on absent field = ok=%v err=%v, want false,nil", ok, err)
	}
}

func TestPackedSize_MatchesPack(t *testing.T) {
	entry := groupEntry{
		name:    "grp",
		passwd:  "x",
		gid:     7,
		members: []string{"one", "two", "three"},
	}
	size := entry.packedSize()
	buf := make([]byte, size)
	record, err := packRecord(&entry, buf)
	if err != nil {
		t.Fatalf("packRecord into exact-size buffer failed: %v", err)
	}
	if _, err := packRecord(&entry, make([]byte, size-1)); err != ErrBufferTooSmall {
		t.Fatalf("one byte short: err = %v, want ErrBufferTooSmall", err)
	}

	name, err := record.Name(buf)
	if err != nil || name != "grp" {
		t.Errorf("Name = %q, %v", name, err)
	}
	members, err := record.Members(buf)
	if err != nil || len(members) != 3 {
		t.Fatalf("Members = %v, %v", members, err)
	}
	for i, want := range []string{"one", "two", "three"} {
		if members[i] != want {
			t.Errorf("member %d = %q, want %q", i, members[i], want)
		}
	}
}
