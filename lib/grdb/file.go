// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package grdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// FileSource serves group records from a colon-separated group file
// (the /etc/group format: name:passwd:gid:member,member,...). The
// file is parsed once at construction; lookups and enumeration
// serialize entries into caller-supplied buffers via the packer.
type FileSource struct {
	path    string
	entries []groupEntry

	mu         sync.Mutex
	cursorOpen bool
}

// NewFileSource parses the group file at path. Blank lines and
// '#' comments are skipped; a malformed line is an error naming the
// line number.
func NewFileSource(path string) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("grdb: opening group file: %w", err)
	}
	defer file.Close()

	source := &FileSource{path: path}
	scanner := bufio.NewScanner(file)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := parseGroupLine(line)
		if err != nil {
			return nil, fmt.Errorf("grdb: %s:%d: %w", path, lineno, err)
		}
		source.entries = append(source.entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("grdb: reading group file: %w", err)
	}
	return source, nil
}

func parseGroupLine(line string) (groupEntry, error) {
	fields := strings.Split(line, ":")
	if len(fields) != 4 {
		return groupEntry{}, fmt.Errorf("expected 4 colon-separated fields, got %d", len(fields))
	}
	gid, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return groupEntry{}, fmt.Errorf("invalid gid %q: %w", fields[2], err)
	}
	entry := groupEntry{
		name:   fields[0],
		passwd: fields[1],
		gid:    uint32(gid),
	}
	if fields[3] != "" {
		entry.members = strings.Split(fields[3], ",")
	}
	return entry, nil
}

// Path returns the file this source was loaded from.
func (s *FileSource) Path() string { return s.path }

// Len returns the number of groups in the database.
func (s *FileSource) Len() int { return len(s.entries) }

// LookupGroup serializes the named group into buf.
func (s *FileSource) LookupGroup(name string, buf []byte) (*Record, error) {
	for i := range s.entries {
		if s.entries[i].name == name {
			return packRecord(&s.entries[i], buf)
		}
	}
	return nil, ErrNotFound
}

// LookupGID serializes the group with the given id into buf.
func (s *FileSource) LookupGID(gid uint32, buf []byte) (*Record, error) {
	for i := range s.entries {
		if s.entries[i].gid == gid {
			return packRecord(&s.entries[i], buf)
		}
	}
	return nil, ErrNotFound
}

// Groups opens the enumeration cursor. The cursor is a process-wide
// style resource: only one may be open at a time, and it must be
// closed on every exit path.
func (s *FileSource) Groups() (*Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursorOpen {
		return nil, ErrCursorBusy
	}
	s.cursorOpen = true

	index := 0
	closed := false
	return &Cursor{
		next: func(buf []byte) (*Record, error) {
			if closed {
				return nil, fmt.Errorf("grdb: Next on closed cursor")
			}
			if index >= len(s.entries) {
				return nil, io.EOF
			}
			record, err := packRecord(&s.entries[index], buf)
			if err != nil {
				// Leave the cursor in place on the exhaustion
				// signal so the record can be retried.
				return nil, err
			}
			index++
			return record, nil
		},
		close: func() error {
			if closed {
				return nil
			}
			closed = true
			s.mu.Lock()
			s.cursorOpen = false
			s.mu.Unlock()
			return nil
		},
	}, nil
}
