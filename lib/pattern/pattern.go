// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package pattern

// Word returns the 32-bit pattern word for a 4-byte-aligned file
// offset. The low two bits of offset are ignored; callers that need
// per-byte values should use ExpectedByte instead.
//
// The top three bytes carry the 24-bit word index (offset/4) and the
// final byte is their XOR folded with 0x55, so a word of zeros is
// never a valid pattern word and a single flipped payload byte always
// breaks the checksum.
func Word(offset int64) uint32 {
	index := offset >> 2
	b0 := byte(index >> 16)
	b1 := byte(index >> 8)
	b2 := byte(index)
	b3 := b0 ^ b1 ^ b2 ^ 0x55
	return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3)
}

// ExpectedByte returns the pattern byte at an arbitrary file offset:
// the byte of Word(offset &^ 3) selected by offset & 3, big-endian
// within the word. This is the verifier's inverse of Fill.
func ExpectedByte(offset int64) byte {
	word := Word(offset)
	shift := uint(3-offset&3) * 8
	return byte(word >> shift)
}

// Fill writes the pattern into buf as if buf were the file content
// starting at fileOffset. The output is a pure function of
// (fileOffset, len(buf)): two calls covering adjoining ranges
// concatenate to the same bytes a single covering call would produce.
// Unaligned starts and sub-word tails are handled byte by byte; the
// aligned middle is unrolled a word at a time.
func Fill(buf []byte, fileOffset int64) {
	i := 0
	n := len(buf)

	// Unaligned head.
	for i < n && (fileOffset+int64(i))&3 != 0 {
		buf[i] = ExpectedByte(fileOffset + int64(i))
		i++
	}

	// Aligned words.
	for ; i+4 <= n; i += 4 {
		word := Word(fileOffset + int64(i))
		buf[i] = byte(word >> 24)
		buf[i+1] = byte(word >> 16)
		buf[i+2] = byte(word >> 8)
		buf[i+3] = byte(word)
	}

	// Sub-word tail.
	for ; i < n; i++ {
		buf[i] = ExpectedByte(fileOffset + int64(i))
	}
}
