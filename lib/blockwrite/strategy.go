// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package blockwrite

import (
	"fmt"
	"os"
)

// Strategy selects the kernel interface used to carry the pattern to
// disk.
type Strategy int

const (
	// Stream writes fixed-size chunks through a buffered writer.
	Stream Strategy = iota
	// WholeMemory builds the entire file image in memory and writes
	// it in one retrying loop.
	WholeMemory
	// Positional writes each chunk with pwrite at an explicit offset.
	Positional
	// Vectored writes batches of descriptors with writev.
	Vectored
	// PositionalVectored writes descriptor batches with pwritev at
	// the batch's starting offset.
	PositionalVectored
)

var strategyNames = map[Strategy]string{
	Stream:             "stream",
	WholeMemory:        "whole-memory",
	Positional:         "positional",
	Vectored:           "vectored",
	PositionalVectored: "positional-vectored",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("blockwrite: unknown strategy %q", name)
}

const (
	// DefaultChunkSize is the per-chunk buffer of the chunked
	// strategies.
	DefaultChunkSize = 8192

	// DefaultMaxIOV bounds the descriptor count of one vectored
	// call. Linux caps a single writev/pwritev at UIO_MAXIOV (1024)
	// descriptors.
	DefaultMaxIOV = 1024
)

// Options tunes a write. The zero value gets defaults.
type Options struct {
	// ChunkSize is the buffer size of the chunked strategies
	// (default 8 KiB).
	ChunkSize int

	// MaxIOV caps descriptors per vectored call (default 1024). Tests
	// force it down to observe batch boundaries.
	MaxIOV int

	// Progress, when set, is called with each new integer percent of
	// completion for strategies that write in multiple steps.
	Progress func(percent int)
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.MaxIOV <= 0 {
		o.MaxIOV = DefaultMaxIOV
	}
	return o
}

// progress reports written/total as an integer percent, deduplicated
// by the caller keeping lastPercent.
func (o Options) progress(written, total uint64, lastPercent *int) {
	if o.Progress == nil || total == 0 {
		return
	}
	percent := int(written * 100 / total)
	if percent != *lastPercent {
		*lastPercent = percent
		o.Progress(percent)
	}
}

// WriteFile creates (truncating if present) filename and writes
// exactly size bytes of pattern content with the chosen strategy.
// This is the single dispatch site for strategy selection.
func WriteFile(filename string, size uint64, strategy Strategy, opts Options) error {
	opts = opts.withDefaults()

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("blockwrite: creating %s: %w", filename, err)
	}

	switch strategy {
	case Stream:
		err = writeStream(file, size, opts)
	case WholeMemory:
		err = writeWholeMemory(file, size, opts)
	case Positional:
		err = writePositional(file, size, opts)
	case Vectored:
		err = writeVectored(file, size, opts, false)
	case PositionalVectored:
		err = writeVectored(file, size, opts, true)
	default:
		err = fmt.Errorf("blockwrite: unknown strategy %d", strategy)
	}

	closeErr := file.Close()
	if err != nil {
		return fmt.Errorf("blockwrite: %s write to %s: %w", strategy, filename, err)
	}
	if closeErr != nil {
		return fmt.Errorf("blockwrite: closing %s: %w", filename, closeErr)
	}
	return nil
}
