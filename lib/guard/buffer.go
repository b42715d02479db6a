// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Guard layout constants. The tail guard is four times the head guard:
// foreign code that miscomputes a length almost always runs off the
// end, not the front.
const (
	HeadGuardSize = 64
	TailGuardSize = 256

	headMagic = 0xDEADBEEF
	tailMagic = 0xCAFEBABE

	// GuardFill is the filler byte in both guard regions after the
	// magic word.
	GuardFill = 0x5A
	// BufferFill is the pre-fill byte of the usable region.
	BufferFill = 0xAA
	// poisonByte overwrites the whole allocation on Release.
	poisonByte = 0xDD
)

// Buffer is a guarded allocation. The usable region may be handed to
// foreign code by address and length; the guard regions must never be
// touched by anyone but Check.
type Buffer struct {
	raw      []byte // whole mmap region
	userSize int
	released bool
}

// Alloc maps a guarded buffer with a usable region of size bytes and
// initializes the guard patterns. size must be positive.
func Alloc(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("guard: usable size must be positive, got %d", size)
	}

	total := HeadGuardSize + size + TailGuardSize
	raw, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("guard: mmap of %d bytes failed: %w", total, err)
	}

	b := &Buffer{raw: raw, userSize: size}
	fillGuard(b.head(), headMagic)
	for i := range b.Data() {
		b.Data()[i] = BufferFill
	}
	fillGuard(b.tail(), tailMagic)
	return b, nil
}

func fillGuard(region []byte, magic uint32) {
	binary.BigEndian.PutUint32(region, magic)
	for i := 4; i < len(region); i++ {
		region[i] = GuardFill
	}
}

func (b *Buffer) head() []byte { return b.raw[:HeadGuardSize] }
func (b *Buffer) tail() []byte { return b.raw[HeadGuardSize+b.userSize:] }

// Data returns the usable region. Foreign code may write anywhere in
// this slice and nowhere else.
func (b *Buffer) Data() []byte {
	if b.released {
		panic("guard: access to released buffer")
	}
	return b.raw[HeadGuardSize : HeadGuardSize+b.userSize]
}

// Size returns the usable region length.
func (b *Buffer) Size() int { return b.userSize }

// Base returns the address of the first usable byte. Violation
// reports print it so a finding can be correlated with addresses
// logged by the code under test.
func (b *Buffer) Base() uintptr {
	return uintptr(unsafe.Pointer(&b.raw[HeadGuardSize]))
}

// Refill restores the usable region to its pre-call fill byte. The
// probe calls this between retries that reuse a buffer so residue
// from one call cannot be mistaken for output of the next.
func (b *Buffer) Refill() {
	data := b.Data()
	for i := range data {
		data[i] = BufferFill
	}
}

// Release poisons the whole allocation and unmaps it. Idempotent.
// Any slice previously obtained from Data is invalid afterwards. An
// unmap failure is returned but not fatal: the mapping is released
// when the process exits regardless.
func (b *Buffer) Release() error {
	if b.released {
		return nil
	}
	for i := range b.raw {
		b.raw[i] = poisonByte
	}
	err := unix.Munmap(b.raw)
	b.raw = nil
	b.released = true
	if err != nil {
		return fmt.Errorf("guard: munmap failed: %w", err)
	}
	return nil
}
