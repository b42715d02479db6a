// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfoIncludesAllFields(t *testing.T) {
	info := Info()
	for _, field := range []string{Version, GitCommit, BuildTime} {
		if !strings.Contains(info, field) {
			t.Errorf("Info() = %q, missing %q", info, field)
		}
	}
}

func TestFullIncludesGoVersionAndPlatform(t *testing.T) {
	full := Full()
	if !strings.Contains(full, Info()) {
		t.Errorf("Full() = %q does not start from Info()", full)
	}
	if !strings.Contains(full, runtime.Version()) {
		t.Errorf("Full() = %q, missing Go version", full)
	}
	if !strings.Contains(full, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("Full() = %q, missing platform", full)
	}
}
