// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/osprobe/syscheck/lib/blockwrite"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriteThenVerifyClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	logger := quietLogger()

	if err := runWrite(blockwrite.Stream, 4096, path, logger); err != nil {
		t.Fatalf("runWrite: %v", err)
	}
	if code := runVerify(4096, path, logger); code != 0 {
		t.Errorf("clean file verified with exit code %d", code)
	}
}

func TestVerifyCorruptFileExitsNonzero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	logger := quietLogger()

	if err := runWrite(blockwrite.WholeMemory, 4096, path, logger); err != nil {
		t.Fatalf("runWrite: %v", err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	if _, err := file.WriteAt([]byte{0xFF}, 100); err != nil {
		t.Fatalf("corrupting: %v", err)
	}
	file.Close()

	if code := runVerify(4096, path, logger); code != 1 {
		t.Errorf("corrupt file verified with exit code %d, want 1", code)
	}
}

func TestProgressPipedIsLineOriented(t *testing.T) {
	var buf bytes.Buffer
	progress := progressFunc(&buf, false)
	progress(50)
	progress(100)

	got := buf.String()
	if got != "Progress: 50%\nProgress: 100%\n" {
		t.Errorf("piped progress = %q", got)
	}
	if strings.Contains(got, "\r") {
		t.Errorf("piped progress contains a carriage return: %q", got)
	}
}

func TestProgressTerminalRewritesOneLine(t *testing.T) {
	var buf bytes.Buffer
	progress := progressFunc(&buf, true)
	progress(50)
	progress(100)

	if got := buf.String(); got != "\rProgress: 50%\rProgress: 100%\n" {
		t.Errorf("terminal progress = %q", got)
	}
}

func TestVerifyShortFileExitsNonzero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out")
	logger := quietLogger()

	if err := runWrite(blockwrite.Stream, 1000, path, logger); err != nil {
		t.Fatalf("runWrite: %v", err)
	}
	if code := runVerify(4096, path, logger); code != 1 {
		t.Errorf("short file verified with exit code %d, want 1", code)
	}
}
