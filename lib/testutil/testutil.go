// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for syscheck packages.
//
// [GroupFile] materializes a colon-format group fixture in a per-test
// temporary directory. [UniqueID] generates monotonically increasing
// identifiers for tests that need distinguishable names without
// resorting to time.Now().
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

// GroupFile writes content to a file named "group" in a fresh
// temporary directory and returns its path. The directory is removed
// when the test completes.
func GroupFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "group")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing group fixture: %v", err)
	}
	return path
}

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer.
//
//	name := testutil.UniqueID("ztest_grp") // "ztest_grp-1", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
