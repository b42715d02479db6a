// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package blockwrite

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

var allStrategies = []Strategy{
	Stream, WholeMemory, Positional, Vectored, PositionalVectored,
}

func TestParseStrategy(t *testing.T) {
	for _, s := range allStrategies {
		parsed, err := ParseStrategy(s.String())
		if err != nil {
			t.Errorf("ParseStrategy(%q) failed: %v", s.String(), err)
		}
		if parsed != s {
			t.Errorf("ParseStrategy(%q) = %v, want %v", s.String(), parsed, s)
		}
	}
	if _, err := ParseStrategy("bogus"); err == nil {
		t.Error("ParseStrategy(\"bogus\") succeeded")
	}
}

func TestWriteFile_SixteenByteAnchor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anchor")
	if err := WriteFile(path, 16, Stream, Options{}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	want := []byte{
		0x00, 0x00, 0x00, 0x55,
		0x00, 0x00, 0x01, 0x54,
		0x00, 0x00, 0x02, 0x57,
		0x00, 0x00, 0x03, 0x56,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("file = % 02x, want % 02x", got, want)
	}
}

func TestWriteFile_EveryStrategyVerifiesClean(t *testing.T) {
	// Sizes chosen to exercise sub-chunk, chunk-boundary, and
	// unaligned tails.
	sizes := []uint64{16, 1024, 8192, 8192 + 1, 100_000}
	for _, strategy := range allStrategies {
		for _, size := range sizes {
			path := filepath.Join(t.TempDir(), "f")
			if err := WriteFile(path, size, strategy, Options{}); err != nil {
				t.Fatalf("%s size %d: WriteFile failed: %v", strategy, size, err)
			}
			result, err := Verify(path, size)
			if err != nil {
				t.Fatalf("%s size %d: Verify failed: %v", strategy, size, err)
			}
			if !result.OK() {
				t.Errorf("%s size %d: %d mismatches, first: %v",
					strategy, size, result.MismatchCount, result.Mismatches)
			}
			if result.BytesChecked != size {
				t.Errorf("%s size %d: checked %d bytes", strategy, size, result.BytesChecked)
			}
		}
	}
}

func TestWriteFile_StrategiesProduceIdenticalFiles(t *testing.T) {
	const size = 70_000 // several chunks plus an unaligned tail
	dir := t.TempDir()

	reference := filepath.Join(dir, "ref")
	if err := WriteFile(reference, size, Stream, Options{}); err != nil {
		t.Fatalf("reference write failed: %v", err)
	}
	refBytes, err := os.ReadFile(reference)
	if err != nil {
		t.Fatalf("reading reference: %v", err)
	}

	for _, strategy := range allStrategies[1:] {
		path := filepath.Join(dir, strategy.String())
		if err := WriteFile(path, size, strategy, Options{}); err != nil {
			t.Fatalf("%s write failed: %v", strategy, err)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s output: %v", strategy, err)
		}
		if !bytes.Equal(got, refBytes) {
			t.Errorf("%s output differs from stream output", strategy)
		}
	}
}

func TestWriteFile_RewriteIsIdentical(t *testing.T) {
	const size = 12_345
	path := filepath.Join(t.TempDir(), "twice")

	if err := WriteFile(path, size, Positional, Options{}); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	first, _ := os.ReadFile(path)
	if err := WriteFile(path, size, Positional, Options{}); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Error("two writes of the same size produced different files")
	}
}

// Scenario: 128 KiB with 4 descriptors of 4 KiB per call is exactly
// eight 16 KiB batches. Progress fires once per batch here because
// every batch lands on a new integer percent.
func TestVectored_RespectsDescriptorLimit(t *testing.T) {
	const size = 0x20000
	path := filepath.Join(t.TempDir(), "v")

	var batches int
	opts := Options{
		ChunkSize: 4096,
		MaxIOV:    4,
		Progress:  func(int) { batches++ },
	}
	if err := WriteFile(path, size, Vectored, opts); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if batches != 8 {
		t.Errorf("observed %d batches, want 8", batches)
	}

	result, err := Verify(path, size)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.OK() {
		t.Errorf("%d mismatches after forced-limit vectored write", result.MismatchCount)
	}
}

func TestWriteFile_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t")
	if err := WriteFile(path, 4096, Stream, Options{}); err != nil {
		t.Fatalf("large write failed: %v", err)
	}
	if err := WriteFile(path, 64, Stream, Options{}); err != nil {
		t.Fatalf("small write failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 64 {
		t.Errorf("file size = %d after rewrite, want 64 (no truncation?)", info.Size())
	}
}

func TestProgress_MonotonicHundredAtEnd(t *testing.T) {
	var seen []int
	opts := Options{Progress: func(p int) { seen = append(seen, p) }}
	path := filepath.Join(t.TempDir(), "p")
	if err := WriteFile(path, 100_000, Stream, opts); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if len(seen) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("progress not monotonic: %v", seen)
		}
	}
	if seen[len(seen)-1] != 100 {
		t.Errorf("final progress = %d, want 100", seen[len(seen)-1])
	}
}
