// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package blockwrite

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/osprobe/syscheck/lib/pattern"
)

// writePositional writes each chunk with pwrite at its explicit file
// offset instead of advancing the implicit position. Short pwrites
// are continued from where they stopped.
func writePositional(file *os.File, size uint64, opts Options) error {
	chunk := make([]byte, opts.ChunkSize)
	fd := int(file.Fd())

	var written uint64
	lastPercent := -1
	for written < size {
		n := uint64(len(chunk))
		if size-written < n {
			n = size - written
		}
		pattern.Fill(chunk[:n], int64(written))

		done := 0
		for done < int(n) {
			wrote, err := unix.Pwrite(fd, chunk[done:n], int64(written)+int64(done))
			if err != nil {
				return fmt.Errorf("pwrite at offset %d: %w", written+uint64(done), err)
			}
			if wrote == 0 {
				return fmt.Errorf("pwrite returned zero bytes at offset %d", written+uint64(done))
			}
			done += wrote
		}
		written += n
		opts.progress(written, size, &lastPercent)
	}
	return nil
}
