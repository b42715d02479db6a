// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// groupprobe runs guarded-buffer probes against a group database.
//
// Usage:
//
//	groupprobe [flags] [tiny|progressive|enum|assumption|overflow|all] [group] [largegroup]
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/osprobe/syscheck/lib/grdb"
	"github.com/osprobe/syscheck/lib/probe"
	"github.com/osprobe/syscheck/lib/report"
	"github.com/osprobe/syscheck/lib/version"
)

const (
	defaultGroup      = "ztest_grp"
	defaultLargeGroup = "ztest_large"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// criticalErr carries the exit status for runs that completed but
// observed sentinel or containment violations.
type criticalErr struct{ count int }

func (e criticalErr) Error() string {
	return fmt.Sprintf("%d critical finding(s)", e.count)
}
func (e criticalErr) ExitCode() int { return 1 }

func run() error {
	var sourcePath string
	var bufSize int
	var maxSize int
	var reportPath string

	flagSet := pflag.NewFlagSet("groupprobe", pflag.ContinueOnError)
	flagSet.StringVar(&sourcePath, "source", "/etc/group", "group database file to probe")
	flagSet.IntVar(&bufSize, "buffer", 1024, "enumeration buffer size in bytes")
	flagSet.IntVar(&maxSize, "max", probe.DefaultMaxSize, "progressive retry ceiling in bytes")
	flagSet.StringVar(&reportPath, "report", "", "write a CBOR findings report to this file")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("groupprobe %s\n", version.Info())
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	mode := "all"
	group := defaultGroup
	largeGroup := defaultLargeGroup
	args := flagSet.Args()
	switch {
	case len(args) > 3:
		return fmt.Errorf("unexpected argument: %s", args[3])
	case len(args) == 3:
		largeGroup = args[2]
		fallthrough
	case len(args) == 2:
		group = args[1]
		fallthrough
	case len(args) == 1:
		mode = args[0]
	}

	logLevel := slog.LevelInfo
	if os.Getenv("SYSCHECK_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	source, err := grdb.NewFileSource(sourcePath)
	if err != nil {
		return fmt.Errorf("opening group database: %w", err)
	}
	fmt.Printf("Probing %s (%d groups)\n", source.Path(), source.Len())

	findings := report.New(source.Path())
	p := &probe.Probe{
		Source:    source,
		MaxSize:   maxSize,
		Trace:     os.Stdout,
		Logger:    logger,
		Collector: findings,
	}

	switch mode {
	case "tiny":
		err = runTiny(p, group)
	case "progressive":
		err = runProgressive(p, group, largeGroup)
	case "enum":
		err = runEnum(p, bufSize)
	case "assumption":
		err = p.AssumptionCheck()
	case "overflow":
		err = runSelfTest(source, group, logger)
	case "all":
		err = runAll(p, source, logger, group, largeGroup, bufSize)
	default:
		printHelp(flagSet)
		return fmt.Errorf("unknown mode: %s", mode)
	}
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := findings.WriteFile(reportPath); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("Report: %d finding(s) written to %s\n", findings.Len(), reportPath)
	}

	if p.Criticals > 0 {
		fmt.Printf("FAILED: %d critical finding(s)\n", p.Criticals)
		return criticalErr{count: p.Criticals}
	}
	fmt.Println("PASSED: no critical findings")
	return nil
}

func runTiny(p *probe.Probe, group string) error {
	fmt.Printf("--- small-buffer probe: %q ---\n", group)
	result, err := p.SmallBufferProbe(group)
	if err != nil {
		return err
	}
	switch result {
	case probe.ERangeClean:
		fmt.Println("small-buffer contract held")
	case probe.ERangeWithOverflow:
		fmt.Println("small-buffer contract VIOLATED: overflow with exhaustion signal")
	case probe.UnexpectedSuccess:
		fmt.Println("record fit in the undersized buffer (nothing to test)")
	}
	return nil
}

func runProgressive(p *probe.Probe, group, largeGroup string) error {
	for _, name := range []string{group, largeGroup} {
		fmt.Printf("--- progressive lookup: %q ---\n", name)
		outcome, err := p.Lookup(name)
		if err != nil {
			return err
		}
		switch {
		case outcome.Found:
			fmt.Printf("found %q gid=%d members=%d after %d size(s), final buffer %d\n",
				outcome.Name, outcome.GID, outcome.Members,
				len(outcome.SizesTried), outcome.FinalSize)
		case outcome.Exhausted:
			fmt.Printf("gave up on %q: ceiling %d reached\n", name, p.MaxSize)
		default:
			fmt.Printf("%q not found\n", name)
		}
	}
	return nil
}

func runEnum(p *probe.Probe, bufSize int) error {
	fmt.Printf("--- enumeration, buffer=%d ---\n", bufSize)
	stats, err := p.Enumerate(bufSize)
	if err != nil {
		return err
	}
	fmt.Printf("enumerated %d group(s), largest member list %d (%s), %d violation(s)\n",
		stats.Total, stats.MaxMembers, stats.MaxMembersGroup, stats.Violations)
	return nil
}

// runSelfTest turns the harness on itself: each injected fault must
// produce at least one critical finding. An alarm that has never fired
// is untested; a fault that slips through fails the run. The faults
// are injected into lookups of group, which must exist in the source:
// two of the three only fire on a found record.
func runSelfTest(source grdb.Source, group string, logger *slog.Logger) error {
	faults := []struct {
		kind grdb.Fault
		name string
	}{
		{grdb.FaultOverflow, "buffer overflow"},
		{grdb.FaultUnterminated, "unterminated string"},
		{grdb.FaultEscape, "out-of-buffer offset"},
	}

	undetected := 0
	for _, fault := range faults {
		fmt.Printf("--- self-test: injecting %s ---\n", fault.name)
		p := &probe.Probe{
			Source: &grdb.FaultSource{Inner: source, Kind: fault.kind},
			Trace:  os.Stdout,
			Logger: logger,
		}
		outcome, err := p.Lookup(group)
		if err != nil {
			return fmt.Errorf("self-test lookup with %s fault: %w", fault.name, err)
		}
		if !outcome.Found && p.Criticals == 0 {
			// Two of the faults only fire on a found record; a missing
			// group would pass as "undetected" and mislead.
			return fmt.Errorf("self-test needs an existing group to corrupt, %q not found", group)
		}
		if p.Criticals == 0 {
			fmt.Printf("UNDETECTED: %s produced no critical finding\n", fault.name)
			undetected++
			continue
		}
		fmt.Printf("detected: %s flagged %d critical(s)\n", fault.name, p.Criticals)
	}
	if undetected > 0 {
		return fmt.Errorf("self-test: %d injected fault(s) went undetected", undetected)
	}
	return nil
}

func runAll(p *probe.Probe, source grdb.Source, logger *slog.Logger, group, largeGroup string, bufSize int) error {
	if err := runTiny(p, group); err != nil {
		return err
	}
	if err := runProgressive(p, group, largeGroup); err != nil {
		return err
	}
	if err := runEnum(p, bufSize); err != nil {
		return err
	}
	fmt.Println("--- assumption check ---")
	if err := p.AssumptionCheck(); err != nil {
		return err
	}
	return runSelfTest(source, group, logger)
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `groupprobe - guarded group database probe

Runs group lookups and enumeration through sentinel-guarded buffers
and flags any write or returned offset outside the caller's region.

Usage:
  groupprobe [flags] [mode] [group] [largegroup]

Modes:
  tiny         one lookup with a deliberately undersized buffer
  progressive  lookups under the doubling retry policy
  enum         full enumeration through one reused buffer
  assumption   verify guarded allocation round-trips in-bounds writes
  overflow     inject known bugs and require the probe to catch them
  all          everything above (default)

The group defaults to %q and the large group to %q.

Flags:
%s
Exit status is 0 when no critical finding was recorded, 1 otherwise.
`, defaultGroup, defaultLargeGroup, flagSet.FlagUsages())
}
