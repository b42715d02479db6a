// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

// writefile writes or verifies pattern-filled files.
//
// Usage:
//
//	writefile [mode...] <size> <filename>
//	writefile -c <size> <filename>
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/osprobe/syscheck/lib/blockwrite"
	"github.com/osprobe/syscheck/lib/sizefmt"
	"github.com/osprobe/syscheck/lib/version"
)

// cookiePath is the marker file that -w blocks on. A separate process
// creates it to release a fleet of waiting writers at the same moment.
const cookiePath = "/tmp/zcookie"

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("SYSCHECK_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	strategy := blockwrite.Stream
	verify := false
	wait := false

	args := os.Args[1:]
flags:
	for len(args) > 0 {
		switch args[0] {
		case "-m", "--memory":
			strategy = blockwrite.WholeMemory
		case "-p", "--positional":
			strategy = blockwrite.Positional
		case "-v", "--vectored":
			strategy = blockwrite.Vectored
		case "-pv", "--pwritev":
			strategy = blockwrite.PositionalVectored
		case "-c", "--verify":
			verify = true
		case "-w", "--wait":
			wait = true
		case "--version":
			fmt.Printf("writefile %s\n", version.Info())
			return
		case "-h", "--help":
			printUsage()
			return
		default:
			if len(args[0]) > 1 && args[0][0] == '-' {
				fmt.Fprintf(os.Stderr, "Unknown option: %s\n\n", args[0])
				printUsage()
				os.Exit(1)
			}
			break flags
		}
		args = args[1:]
	}

	if len(args) != 2 {
		printUsage()
		os.Exit(1)
	}

	size, err := sizefmt.ParseSize(args[0])
	if err != nil || size == 0 {
		fmt.Fprintf(os.Stderr, "Invalid size: %q\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
	filename := args[1]

	if wait {
		if err := waitForCookie(logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if verify {
		os.Exit(runVerify(size, filename, logger))
	}
	if err := runWrite(strategy, size, filename, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// waitForCookie blocks until the cookie file appears, then removes it
// so the next waiter has to be released separately.
func waitForCookie(logger *slog.Logger) error {
	logger.Info("waiting for cookie", "path", cookiePath)
	for {
		if _, err := os.Stat(cookiePath); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", cookiePath, err)
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err := os.Remove(cookiePath); err != nil {
		return fmt.Errorf("remove %s: %w", cookiePath, err)
	}
	return nil
}

// progressFunc renders percent updates on w. On a terminal each
// update rewrites the same line with a carriage return; piped output
// gets one newline-terminated line per update instead, so logs stay
// readable and progress is never silently dropped.
func progressFunc(w io.Writer, tty bool) func(percent int) {
	return func(percent int) {
		if tty {
			fmt.Fprintf(w, "\rProgress: %d%%", percent)
			if percent >= 100 {
				fmt.Fprintln(w)
			}
			return
		}
		fmt.Fprintf(w, "Progress: %d%%\n", percent)
	}
}

func runWrite(strategy blockwrite.Strategy, size uint64, filename string, logger *slog.Logger) error {
	fmt.Printf("Writing %s to file '%s' (%s)...\n",
		sizefmt.FormatSize(size), filename, strategy)
	logger.Debug("write starting",
		"strategy", strategy.String(), "size", size, "file", filename)

	opts := blockwrite.Options{
		Progress: progressFunc(os.Stdout, term.IsTerminal(int(os.Stdout.Fd()))),
	}

	start := time.Now()
	if err := blockwrite.WriteFile(filename, size, strategy, opts); err != nil {
		return err
	}
	elapsed := time.Since(start)
	fmt.Printf("Successfully wrote %s to '%s' in %v\n",
		sizefmt.FormatSize(size), filename, elapsed.Round(time.Millisecond))
	return nil
}

// runVerify returns the process exit status: 0 for a clean file, 1
// when any byte mismatches or the file is short.
func runVerify(size uint64, filename string, logger *slog.Logger) int {
	fmt.Printf("Verifying %s of file '%s'...\n", sizefmt.FormatSize(size), filename)
	logger.Debug("verify starting", "size", size, "file", filename)

	result, err := blockwrite.Verify(filename, size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for _, m := range result.Mismatches {
		fmt.Printf("Mismatch at %s\n", m)
	}
	if extra := result.MismatchCount - uint64(len(result.Mismatches)); extra > 0 {
		fmt.Printf("... and %d more mismatches\n", extra)
	}
	if result.OK() {
		fmt.Printf("Verified %s of '%s': clean\n", sizefmt.FormatSize(size), filename)
		return 0
	}
	fmt.Printf("Verification failed: %d mismatched bytes of %d checked\n",
		result.MismatchCount, result.BytesChecked)
	return 1
}

func printUsage() {
	fmt.Print(`writefile - patterned file writer and verifier

Usage:
  writefile [mode...] <size> <filename>

Modes (default is buffered stream output):
  -m, --memory        build the whole image in memory, then write(2) it
  -p, --positional    pwrite(2) fixed-size chunks at explicit offsets
  -v, --vectored      writev(2) batches of chunk descriptors
  -pv, --pwritev      pwritev(2) batches at explicit offsets
  -c, --verify        verify an existing file against the pattern
  -w, --wait          block until ` + cookiePath + ` exists, remove it, then run

Sizes accept a decimal number with an optional B/K/M/G/T suffix
(binary units, case-insensitive) or a 0x-prefixed hex byte count.

Examples:
  writefile 64M /tmp/big          # stream 64 MiB
  writefile -pv 1G /tmp/huge      # pwritev in batches
  writefile -c 64M /tmp/big       # verify the first 64 MiB

Exit status is 0 on success and 1 on any write error, verification
mismatch, or short file.
`)
}
