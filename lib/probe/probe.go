// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/osprobe/syscheck/lib/grdb"
	"github.com/osprobe/syscheck/lib/guard"
)

// DefaultMaxSize caps the progressive retry loop.
const DefaultMaxSize = 64 * 1024

// smallBufferSize is the intentionally undersized buffer of the
// small-buffer probe.
const smallBufferSize = 64

// Probe drives guarded calls against a group database source.
// Single-threaded: the reentrant interface is consumed for
// its buffer-ownership contract, not for parallelism.
type Probe struct {
	Source grdb.Source

	// MaxSize bounds the progressive retry loop (default 64 KiB).
	MaxSize int

	// Trace receives the human-readable transcript. nil silences it.
	Trace io.Writer

	// Logger receives structured diagnostics. nil means slog default.
	Logger *slog.Logger

	// Collector, when set, receives findings for the report.
	Collector Collector

	// Criticals counts sentinel and containment violations observed
	// across all operations on this probe.
	Criticals int
}

func (p *Probe) tracer() *tracer { return &tracer{w: p.Trace} }

func (p *Probe) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Probe) maxSize() int {
	if p.MaxSize > 0 {
		return p.MaxSize
	}
	return DefaultMaxSize
}

// progression returns the buffer sizes the retry loop attempts:
// powers of two from 32 up to the configured ceiling.
func (p *Probe) progression() []int {
	var sizes []int
	for size := 32; size <= p.maxSize(); size *= 2 {
		sizes = append(sizes, size)
	}
	return sizes
}

func (p *Probe) record(f Finding) {
	if f.Severity == SeverityCritical {
		p.Criticals++
	}
	if p.Collector != nil {
		p.Collector.Record(f)
	}
}

// checkGuards scans the buffer's sentinels, traces any damage, and
// records a critical finding when the guards are no longer intact.
func (p *Probe) checkGuards(buffer *guard.Buffer, test, context string) bool {
	result := buffer.Check(context)
	trace := p.tracer()
	if trace.guardReport(result) {
		return true
	}
	detail := fmt.Sprintf("%d head / %d tail bytes damaged", result.HeadErrors, result.TailErrors)
	for _, v := range result.Violations {
		detail += "; " + v.String()
	}
	p.record(Finding{
		Test:     test,
		Severity: SeverityCritical,
		Context:  context,
		Detail:   detail,
	})
	return false
}

// LookupOutcome is the result of one progressive lookup.
type LookupOutcome struct {
	Found bool
	// SizesTried lists every buffer size attempted, in order.
	SizesTried []int
	// FinalSize is the buffer size of the successful attempt, or 0.
	FinalSize int
	// Exhausted is set when the ceiling was reached without success.
	Exhausted bool

	Name       string
	GID        uint32
	Members    int
	Violations int
}

// Lookup performs a single-record lookup under the progressive retry
// policy. Each attempt gets a fresh guarded buffer; sentinels are
// checked regardless of outcome; the buffer-exhaustion signal doubles
// the size up to the ceiling. Non-recoverable source errors are
// returned with the outcome so far.
func (p *Probe) Lookup(name string) (*LookupOutcome, error) {
	trace := p.tracer()
	outcome := &LookupOutcome{}

	for _, size := range p.progression() {
		outcome.SizesTried = append(outcome.SizesTried, size)

		buffer, err := guard.Alloc(size)
		if err != nil {
			return outcome, fmt.Errorf("allocating %d-byte guarded buffer: %w", size, err)
		}

		trace.call("lookup %q buffer=%d base=0x%x", name, size, buffer.Base())
		record, lookupErr := p.Source.LookupGroup(name, buffer.Data())

		// Sentinels are inspected before the result is believed,
		// whatever the result was.
		context := fmt.Sprintf("lookup %q size %d", name, size)
		guardsOK := p.checkGuards(buffer, "progressive", context)

		switch {
		case errors.Is(lookupErr, grdb.ErrBufferTooSmall):
			trace.result("buffer too small at %d, will retry", size)
			buffer.Release()
			continue

		case errors.Is(lookupErr, grdb.ErrNotFound):
			trace.result("group %q not found", name)
			buffer.Release()
			return outcome, nil

		case lookupErr != nil:
			trace.err("lookup %q failed: %v", name, lookupErr)
			buffer.Release()
			return outcome, fmt.Errorf("lookup %q: %w", name, lookupErr)
		}

		// Success path.
		outcome.Found = true
		outcome.FinalSize = size
		outcome.GID = record.GID

		violations, problems := validateRecord(record, buffer.Data())
		outcome.Violations = violations
		for _, problem := range problems {
			trace.crit("%s: %s", context, problem)
		}
		if violations > 0 {
			p.record(Finding{
				Test:     "progressive",
				Severity: SeverityCritical,
				Context:  context,
				Detail:   fmt.Sprintf("%d containment violations", violations),
				Sizes:    outcome.SizesTried,
			})
			buffer.Release()
			return outcome, nil
		}

		recordName, _ := record.Name(buffer.Data())
		members, _ := record.Members(buffer.Data())
		outcome.Name = recordName
		outcome.Members = len(members)

		aggressiveRead(record, buffer.Data())
		trace.ok("found %q gid=%d members=%d at size %d (guards %s, aggressive read clean)",
			recordName, record.GID, len(members), size, guardState(guardsOK))
		p.record(Finding{
			Test:     "progressive",
			Severity: SeverityInfo,
			Context:  context,
			Detail:   fmt.Sprintf("found gid=%d members=%d", record.GID, len(members)),
			Sizes:    outcome.SizesTried,
		})
		buffer.Release()
		return outcome, nil
	}

	outcome.Exhausted = true
	trace.err("lookup %q exhausted buffer progression %v", name, outcome.SizesTried)
	p.record(Finding{
		Test:     "progressive",
		Severity: SeverityError,
		Context:  fmt.Sprintf("lookup %q", name),
		Detail:   "buffer progression exhausted at ceiling",
		Sizes:    outcome.SizesTried,
	})
	return outcome, nil
}

func guardState(ok bool) string {
	if ok {
		return "intact"
	}
	return "DAMAGED"
}

// SmallBufferResult classifies the small-buffer probe outcome.
type SmallBufferResult int

const (
	// ERangeClean: the exhaustion signal came back and the sentinels
	// are intact. The contract held.
	ERangeClean SmallBufferResult = iota
	// ERangeWithOverflow: the exhaustion signal came back but the
	// source wrote outside the buffer anyway. Critical.
	ERangeWithOverflow
	// UnexpectedSuccess: the record fit after all.
	UnexpectedSuccess
	// ProbeError: the lookup failed for an unrelated reason.
	ProbeError
)

// SmallBufferProbe performs one lookup with an intentionally
// undersized buffer. The contract under test: the source must return
// the exhaustion signal without any sentinel violation.
func (p *Probe) SmallBufferProbe(name string) (SmallBufferResult, error) {
	trace := p.tracer()

	buffer, err := guard.Alloc(smallBufferSize)
	if err != nil {
		return ProbeError, fmt.Errorf("allocating guarded buffer: %w", err)
	}
	defer buffer.Release()

	trace.call("lookup %q buffer=%d (intentionally undersized)", name, smallBufferSize)
	_, lookupErr := p.Source.LookupGroup(name, buffer.Data())

	context := fmt.Sprintf("small-buffer lookup %q", name)
	guardsOK := p.checkGuards(buffer, "tiny", context)

	switch {
	case errors.Is(lookupErr, grdb.ErrBufferTooSmall):
		if !guardsOK {
			trace.crit("source signalled exhaustion but wrote outside the buffer")
			return ERangeWithOverflow, nil
		}
		trace.ok("exhaustion signal with intact sentinels")
		p.record(Finding{
			Test:     "tiny",
			Severity: SeverityInfo,
			Context:  context,
			Detail:   "exhaustion signal, sentinels intact",
		})
		return ERangeClean, nil

	case lookupErr != nil:
		trace.err("lookup failed: %v", lookupErr)
		return ProbeError, fmt.Errorf("small-buffer lookup %q: %w", name, lookupErr)

	default:
		trace.result("unexpected success with %d-byte buffer (guards %s)",
			smallBufferSize, guardState(guardsOK))
		p.record(Finding{
			Test:     "tiny",
			Severity: SeverityInfo,
			Context:  context,
			Detail:   "record fit in the undersized buffer",
		})
		return UnexpectedSuccess, nil
	}
}

// EnumStats summarizes one full enumeration.
type EnumStats struct {
	Total int
	// MaxMembers is the largest member list observed, and
	// MaxMembersGroup the name of the group that had it (when the
	// name itself validated).
	MaxMembers      int
	MaxMembersGroup string
	Violations      int
}

// Enumerate walks every group through one guarded buffer of bufSize
// bytes, re-checking sentinels and validating the record after every
// fetch. The cursor is closed on every exit path. Buffer reuse across
// records is allowed; the usable region is refilled between fetches
// so one record's bytes cannot pass for the next record's output.
func (p *Probe) Enumerate(bufSize int) (*EnumStats, error) {
	trace := p.tracer()
	stats := &EnumStats{}

	buffer, err := guard.Alloc(bufSize)
	if err != nil {
		return nil, fmt.Errorf("allocating %d-byte guarded buffer: %w", bufSize, err)
	}
	defer buffer.Release()

	cursor, err := p.Source.Groups()
	if err != nil {
		return nil, fmt.Errorf("opening enumeration cursor: %w", err)
	}
	defer cursor.Close()

	trace.call("enumerate buffer=%d", bufSize)
	for {
		buffer.Refill()
		record, nextErr := cursor.Next(buffer.Data())

		context := fmt.Sprintf("enumerate record %d", stats.Total+1)
		p.checkGuards(buffer, "enum", context)

		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			trace.err("enumeration stopped: %v", nextErr)
			return stats, fmt.Errorf("fetching record %d: %w", stats.Total+1, nextErr)
		}

		stats.Total++
		violations, problems := validateRecord(record, buffer.Data())
		if violations > 0 {
			stats.Violations += violations
			// Name the record if its name survived validation;
			// otherwise all we can report is the position.
			name, nameErr := record.Name(buffer.Data())
			who := fmt.Sprintf("record %d", stats.Total)
			if nameErr == nil {
				who = fmt.Sprintf("record %d (%q)", stats.Total, name)
			}
			for _, problem := range problems {
				trace.crit("%s: %s", who, problem)
			}
			p.record(Finding{
				Test:     "enum",
				Severity: SeverityCritical,
				Context:  who,
				Detail:   fmt.Sprintf("%d containment violations", violations),
			})
			continue
		}

		aggressiveRead(record, buffer.Data())
		name, _ := record.Name(buffer.Data())
		members, _ := record.Members(buffer.Data())
		if len(members) > stats.MaxMembers {
			stats.MaxMembers = len(members)
			stats.MaxMembersGroup = name
		}
	}

	trace.result("enumerated %d groups, largest member list %d (%s)",
		stats.Total, stats.MaxMembers, stats.MaxMembersGroup)
	p.record(Finding{
		Test:     "enum",
		Severity: SeverityInfo,
		Context:  fmt.Sprintf("buffer %d", bufSize),
		Detail: fmt.Sprintf("%d groups, largest member list %d (%s)",
			stats.Total, stats.MaxMembers, stats.MaxMembersGroup),
	})
	p.logger().Debug("enumeration complete",
		"groups", stats.Total, "max_members", stats.MaxMembers)
	return stats, nil
}

// AssumptionCheck writes and reads back every byte of a guarded
// buffer's usable region, staying inside declared bounds, and then
// verifies the sentinels. It demonstrates that full in-bounds use of
// the buffer is guard-clean, the baseline the violation tests are
// measured against.
func (p *Probe) AssumptionCheck() error {
	trace := p.tracer()
	const size = 256

	buffer, err := guard.Alloc(size)
	if err != nil {
		return fmt.Errorf("allocating guarded buffer: %w", err)
	}
	defer buffer.Release()

	trace.call("assumption check: full in-bounds sweep of %d bytes", size)
	data := buffer.Data()
	for i := range data {
		data[i] = byte(i)
	}
	for i := range data {
		if data[i] != byte(i) {
			return fmt.Errorf("read-back mismatch at offset %d", i)
		}
	}

	if !p.checkGuards(buffer, "assumption", "in-bounds sweep") {
		return fmt.Errorf("sentinel damage after in-bounds access")
	}
	trace.ok("in-bounds sweep left sentinels intact")
	return nil
}
