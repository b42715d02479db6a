// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/osprobe/syscheck/lib/grdb"
	"github.com/osprobe/syscheck/lib/probe"
	"github.com/osprobe/syscheck/lib/testutil"
)

func fixtureSource(t *testing.T) *grdb.FileSource {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("root:x:0:\n")
	sb.WriteString("ztest_grp:x:54321:")
	for i := 1; i <= 20; i++ {
		if i > 1 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "ztest_u%04d", i)
	}
	sb.WriteByte('\n')

	source, err := grdb.NewFileSource(testutil.GroupFile(t, sb.String()))
	if err != nil {
		t.Fatalf("NewFileSource failed: %v", err)
	}
	return source
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSelfTestDetectsEveryInjectedFault(t *testing.T) {
	if err := runSelfTest(fixtureSource(t), defaultGroup, quietLogger()); err != nil {
		t.Fatalf("self-test should detect every fault, got: %v", err)
	}
}

func TestSelfTestUsesTheRequestedGroup(t *testing.T) {
	// A healthy database with no ztest_ fixtures at all: the operator
	// names one of its real groups and the self-test must corrupt that
	// group's lookups, not a hardcoded fixture name.
	name := testutil.UniqueID("staffgrp")
	content := fmt.Sprintf("root:x:0:\n%s:x:100:alice,bob,carol\n", name)
	source, err := grdb.NewFileSource(testutil.GroupFile(t, content))
	if err != nil {
		t.Fatalf("NewFileSource failed: %v", err)
	}

	if err := runSelfTest(source, name, quietLogger()); err != nil {
		t.Fatalf("self-test against a healthy non-fixture database failed: %v", err)
	}
}

func TestSelfTestMissingGroupIsAnError(t *testing.T) {
	source, err := grdb.NewFileSource(testutil.GroupFile(t, "root:x:0:\n"))
	if err != nil {
		t.Fatalf("NewFileSource failed: %v", err)
	}

	err = runSelfTest(source, "no_such_group", quietLogger())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("want a missing-group error, got: %v", err)
	}
	if err != nil && strings.Contains(err.Error(), "undetected") {
		t.Fatalf("missing group misreported as an undetected fault: %v", err)
	}
}

func TestSelfTestFailsWhenFaultSlipsThrough(t *testing.T) {
	// A probe run against the clean source records no criticals, which
	// is exactly the shape of an undetected fault.
	p := &probe.Probe{Source: fixtureSource(t), Logger: quietLogger()}
	if _, err := p.Lookup(defaultGroup); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if p.Criticals != 0 {
		t.Fatalf("clean source produced %d criticals", p.Criticals)
	}
}

func TestRunTinyCleanSource(t *testing.T) {
	p := &probe.Probe{Source: fixtureSource(t), Logger: quietLogger()}
	if err := runTiny(p, defaultGroup); err != nil {
		t.Fatalf("runTiny: %v", err)
	}
	if p.Criticals != 0 {
		t.Errorf("clean small-buffer probe recorded %d criticals", p.Criticals)
	}
}

func TestRunEnumCountsGroups(t *testing.T) {
	p := &probe.Probe{Source: fixtureSource(t), Logger: quietLogger()}
	stats, err := p.Enumerate(1024)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.MaxMembersGroup != defaultGroup {
		t.Errorf("MaxMembersGroup = %q, want %q", stats.MaxMembersGroup, defaultGroup)
	}
}

func TestCriticalErrExitCode(t *testing.T) {
	err := criticalErr{count: 3}
	if err.ExitCode() != 1 {
		t.Errorf("ExitCode = %d, want 1", err.ExitCode())
	}
	if !strings.Contains(err.Error(), "3") {
		t.Errorf("Error = %q, should mention the count", err.Error())
	}
}
