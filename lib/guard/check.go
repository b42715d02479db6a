// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"encoding/binary"
	"fmt"
)

// Region identifies which guard a violation was found in.
type Region int

const (
	// Head is the guard before the usable region; damage here is an
	// underflow.
	Head Region = iota
	// Tail is the guard after the usable region; damage here is an
	// overflow and is always critical.
	Tail
)

func (r Region) String() string {
	if r == Head {
		return "HEAD"
	}
	return "TAIL"
}

// Violation records one damaged guard byte: where it is, what was
// found, and what should have been there. Offset is relative to the
// start of the damaged guard region; a magic-word mismatch is reported
// at offset 0 with the first differing byte.
type Violation struct {
	Region   Region
	Offset   int
	Observed byte
	Expected byte
}

func (v Violation) String() string {
	kind := "underflow"
	if v.Region == Tail {
		kind = "overflow"
	}
	return fmt.Sprintf("%s guard byte %d: observed 0x%02X, expected 0x%02X (%s)",
		v.Region, v.Offset, v.Observed, v.Expected, kind)
}

// CheckResult is the outcome of one guard scan.
type CheckResult struct {
	// Context names the call after which the scan ran.
	Context string
	// Violations holds the first few damaged bytes per region,
	// verbatim. Counts beyond that are only reflected in HeadErrors
	// and TailErrors.
	Violations []Violation
	// HeadErrors and TailErrors are total damaged-byte counts per
	// region, including bytes not listed in Violations.
	HeadErrors int
	TailErrors int
}

// OK reports whether both guards were fully intact.
func (r *CheckResult) OK() bool { return r.HeadErrors == 0 && r.TailErrors == 0 }

// maxReported bounds how many violations per region are kept verbatim;
// the remainder are only counted.
const maxReported = 5

// Check scans both guard regions and reports every byte that differs
// from the expected pattern. It never modifies the buffer and may be
// called any number of times, before and after each foreign call.
func (b *Buffer) Check(context string) *CheckResult {
	result := &CheckResult{Context: context}
	result.HeadErrors = checkRegion(b.head(), headMagic, Head, result)
	result.TailErrors = checkRegion(b.tail(), tailMagic, Tail, result)
	return result
}

func checkRegion(region []byte, magic uint32, which Region, result *CheckResult) int {
	errors := 0
	report := func(offset int, observed, expected byte) {
		if errors < maxReported {
			result.Violations = append(result.Violations, Violation{
				Region:   which,
				Offset:   offset,
				Observed: observed,
				Expected: expected,
			})
		}
		errors++
	}

	var want [4]byte
	binary.BigEndian.PutUint32(want[:], magic)
	for i := 0; i < 4; i++ {
		if region[i] != want[i] {
			report(i, region[i], want[i])
		}
	}
	for i := 4; i < len(region); i++ {
		if region[i] != GuardFill {
			report(i, region[i], GuardFill)
		}
	}
	return errors
}
