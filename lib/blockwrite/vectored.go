// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package blockwrite

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/osprobe/syscheck/lib/pattern"
)

// writeVectored writes the file in descriptor batches. One backing
// buffer holds a full batch of pattern bytes; the descriptor list
// slices it at chunk granularity, never exceeding MaxIOV descriptors
// per call. With positional set, each batch goes out through pwritev
// at the batch's starting offset; otherwise writev advances the file
// position. A short write at a batch boundary is a hard error: the
// batch is the unit of progress and a partial batch means the file
// contents can no longer be trusted.
func writeVectored(file *os.File, size uint64, opts Options, positional bool) error {
	batchBytes := uint64(opts.ChunkSize) * uint64(opts.MaxIOV)
	backing := make([]byte, min(batchBytes, size))
	iovs := make([][]byte, 0, opts.MaxIOV)
	fd := int(file.Fd())

	var written uint64
	lastPercent := -1
	for written < size {
		batch := batchBytes
		if size-written < batch {
			batch = size - written
		}
		pattern.Fill(backing[:batch], int64(written))

		iovs = iovs[:0]
		for off := uint64(0); off < batch; off += uint64(opts.ChunkSize) {
			end := off + uint64(opts.ChunkSize)
			if end > batch {
				end = batch
			}
			iovs = append(iovs, backing[off:end])
		}

		var n int
		var err error
		if positional {
			n, err = unix.Pwritev(fd, iovs, int64(written))
		} else {
			n, err = unix.Writev(fd, iovs)
		}
		if err != nil {
			return fmt.Errorf("vectored write of %d descriptors at offset %d: %w",
				len(iovs), written, err)
		}
		if uint64(n) != batch {
			return fmt.Errorf("short vectored write at offset %d: %d of %d bytes",
				written, n, batch)
		}
		written += batch
		opts.progress(written, size, &lastPercent)
	}
	return nil
}
