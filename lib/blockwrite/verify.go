// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package blockwrite

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/osprobe/syscheck/lib/pattern"
)

// ErrShortFile reports that the file ended before the requested size.
// It is a distinct condition from content mismatch: the bytes that
// are there may all be correct.
var ErrShortFile = errors.New("blockwrite: file shorter than requested size")

// maxReportedMismatches bounds how many mismatches a VerifyResult
// keeps verbatim; the rest are only counted.
const maxReportedMismatches = 10

// Mismatch is one byte that differs from the pattern.
type Mismatch struct {
	Offset   uint64
	Expected byte
	Observed byte
}

func (m Mismatch) String() string {
	return fmt.Sprintf("offset 0x%X: expected 0x%02X, observed 0x%02X",
		m.Offset, m.Expected, m.Observed)
}

// VerifyResult summarizes a verification pass.
type VerifyResult struct {
	// BytesChecked is how many bytes were read and compared.
	BytesChecked uint64
	// Mismatches holds the first few differing bytes verbatim.
	Mismatches []Mismatch
	// MismatchCount is the total number of differing bytes,
	// including those beyond the verbatim cap.
	MismatchCount uint64
}

// OK reports whether the checked range matched the pattern exactly.
func (r *VerifyResult) OK() bool { return r.MismatchCount == 0 }

// Verify reads size bytes of filename sequentially and compares every
// byte against the pattern. A file that ends early returns the result
// so far wrapped in ErrShortFile. Content mismatches are not an
// error return: they are counted in the result, first few verbatim.
func Verify(filename string, size uint64) (*VerifyResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("blockwrite: opening %s for verify: %w", filename, err)
	}
	defer file.Close()

	result := &VerifyResult{}
	chunk := make([]byte, DefaultChunkSize)
	for result.BytesChecked < size {
		want := uint64(len(chunk))
		if size-result.BytesChecked < want {
			want = size - result.BytesChecked
		}
		n, readErr := io.ReadFull(file, chunk[:want])

		for i := 0; i < n; i++ {
			offset := result.BytesChecked + uint64(i)
			expected := pattern.ExpectedByte(int64(offset))
			if chunk[i] != expected {
				if len(result.Mismatches) < maxReportedMismatches {
					result.Mismatches = append(result.Mismatches, Mismatch{
						Offset:   offset,
						Expected: expected,
						Observed: chunk[i],
					})
				}
				result.MismatchCount++
			}
		}
		result.BytesChecked += uint64(n)

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return result, fmt.Errorf("%w: got %d of %d bytes",
				ErrShortFile, result.BytesChecked, size)
		}
		if readErr != nil {
			return result, fmt.Errorf("blockwrite: reading %s at offset %d: %w",
				filename, result.BytesChecked, readErr)
		}
	}
	return result, nil
}
