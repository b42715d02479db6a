// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package blockwrite

import (
	"bufio"
	"os"

	"github.com/osprobe/syscheck/lib/pattern"
)

// writeStream is the default strategy: fill a fixed-size chunk with
// the pattern for the current offset, push it through a buffered
// writer, advance.
func writeStream(file *os.File, size uint64, opts Options) error {
	writer := bufio.NewWriterSize(file, opts.ChunkSize)
	chunk := make([]byte, opts.ChunkSize)

	var written uint64
	lastPercent := -1
	for written < size {
		n := uint64(len(chunk))
		if size-written < n {
			n = size - written
		}
		pattern.Fill(chunk[:n], int64(written))
		if _, err := writer.Write(chunk[:n]); err != nil {
			return err
		}
		written += n
		opts.progress(written, size, &lastPercent)
	}
	return writer.Flush()
}
