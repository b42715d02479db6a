// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"
	"io"

	"github.com/osprobe/syscheck/lib/guard"
)

// Severity classifies a finding.
type Severity int

const (
	// SeverityInfo is expected behavior worth noting.
	SeverityInfo Severity = iota
	// SeverityError is a failed operation that is not a boundary
	// violation.
	SeverityError
	// SeverityCritical is a sentinel or containment violation: the
	// source wrote or pointed outside the storage it was given.
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityError:
		return "error"
	default:
		return "critical"
	}
}

// Finding is one result the probe wants remembered beyond the trace
// stream. A Collector receives findings as they happen.
type Finding struct {
	Test     string   `cbor:"test"`
	Severity Severity `cbor:"severity"`
	Context  string   `cbor:"context"`
	Detail   string   `cbor:"detail,omitempty"`
	Sizes    []int    `cbor:"sizes,omitempty"`
}

// Collector receives findings. lib/report implements it; tests use an
// in-memory slice.
type Collector interface {
	Record(f Finding)
}

// tracer writes the human-readable probe transcript. All lines go to
// one writer in call order; the format is stable because operators
// grep it.
type tracer struct {
	w io.Writer
}

func (t *tracer) call(format string, args ...any)   { t.line("CALL", format, args...) }
func (t *tracer) result(format string, args ...any) { t.line("RESULT", format, args...) }
func (t *tracer) ok(format string, args ...any)     { t.line("OK", format, args...) }
func (t *tracer) crit(format string, args ...any)   { t.line("CRITICAL", format, args...) }
func (t *tracer) err(format string, args ...any)    { t.line("ERROR", format, args...) }

func (t *tracer) line(tag, format string, args ...any) {
	if t.w == nil {
		return
	}
	fmt.Fprintf(t.w, "[%s] %s\n", tag, fmt.Sprintf(format, args...))
}

// guardReport traces a sentinel scan result and returns true when the
// guards were intact. Violations print verbatim up to the per-region
// cap, then as counts.
func (t *tracer) guardReport(result *guard.CheckResult) bool {
	if result.OK() {
		return true
	}
	if result.TailErrors > 0 {
		t.crit("%s: buffer overflow, %d bytes damaged past the usable region",
			result.Context, result.TailErrors)
	}
	if result.HeadErrors > 0 {
		t.crit("%s: buffer underflow, %d bytes damaged before the usable region",
			result.Context, result.HeadErrors)
	}
	for _, v := range result.Violations {
		t.crit("%s: %s", result.Context, v)
	}
	return false
}
