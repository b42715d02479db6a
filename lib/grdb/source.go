// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package grdb

// Source is reentrant-style group database access. Implementations
// serialize records into the buffer the caller provides and must not
// write a single byte past its length; a record that does not fit is
// signalled with ErrBufferTooSmall and the buffer contents are then
// unspecified.
//
// Enumeration follows a strict open/use/close discipline: Groups
// opens the process-wide cursor, Next fetches records until io.EOF,
// and Close must run on every exit path. A Source supports one open
// cursor at a time.
type Source interface {
	// LookupGroup serializes the group with the given name into buf.
	LookupGroup(name string, buf []byte) (*Record, error)

	// LookupGID serializes the group with the given numeric id into buf.
	LookupGID(gid uint32, buf []byte) (*Record, error)

	// Groups opens an enumeration cursor over all groups.
	Groups() (*Cursor, error)
}

// Cursor enumerates groups one record at a time. Not safe for
// concurrent use; the probe runs single-threaded.
type Cursor struct {
	next  func(buf []byte) (*Record, error)
	close func() error
}

// Next serializes the next group into buf. Returns io.EOF at the end
// of the database. On ErrBufferTooSmall the cursor does not advance,
// so the same record can be retried with a larger buffer.
func (c *Cursor) Next(buf []byte) (*Record, error) { return c.next(buf) }

// Close releases the cursor. Idempotent.
func (c *Cursor) Close() error { return c.close() }
