// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package blockwrite

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/osprobe/syscheck/lib/pattern"
)

// writeWholeMemory builds the complete file image in one allocation
// and pushes it out through raw write(2) calls, retrying short writes
// and EINTR. A zero-byte return with no error would loop forever, so
// it is treated as a hard error.
func writeWholeMemory(file *os.File, size uint64, opts Options) error {
	image := make([]byte, size)
	pattern.Fill(image, 0)

	fd := int(file.Fd())
	var written uint64
	lastPercent := -1
	for written < size {
		n, err := unix.Write(fd, image[written:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("write at %d bytes: %w", written, err)
		}
		if n == 0 {
			return fmt.Errorf("write returned zero bytes at offset %d", written)
		}
		written += uint64(n)
		opts.progress(written, size, &lastPercent)
	}
	return nil
}
