// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/osprobe/syscheck/lib/probe"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding: sorted map keys, smallest integer encoding, no
// indefinite-length items.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("report: CBOR encoder initialization failed: " + err.Error())
	}
}

// Document is the on-disk report layout.
type Document struct {
	// Hostname of the machine the probe ran on.
	Hostname string `cbor:"hostname"`
	// Started is the run start time in RFC 3339 UTC.
	Started string `cbor:"started"`
	// Source is the group database path that was probed.
	Source string `cbor:"source"`
	// Findings in the order they were recorded.
	Findings []probe.Finding `cbor:"findings"`
	// Criticals is the number of critical findings, duplicated at
	// the top level so a consumer can triage without walking the list.
	Criticals int `cbor:"criticals"`
}

// Report accumulates findings during a probe run. It implements
// [probe.Collector].
type Report struct {
	doc Document
}

var _ probe.Collector = (*Report)(nil)

// New starts a report for a run against the given source path.
func New(source string) *Report {
	hostname, _ := os.Hostname()
	return &Report{doc: Document{
		Hostname: hostname,
		Started:  time.Now().UTC().Format(time.RFC3339),
		Source:   source,
	}}
}

// Record appends one finding.
func (r *Report) Record(f probe.Finding) {
	r.doc.Findings = append(r.doc.Findings, f)
	if f.Severity == probe.SeverityCritical {
		r.doc.Criticals++
	}
}

// Len returns the number of findings recorded so far.
func (r *Report) Len() int { return len(r.doc.Findings) }

// Marshal encodes the report document to deterministic CBOR.
func (r *Report) Marshal() ([]byte, error) {
	data, err := encMode.Marshal(&r.doc)
	if err != nil {
		return nil, fmt.Errorf("report: encoding: %w", err)
	}
	return data, nil
}

// WriteFile encodes the report and writes it to path.
func (r *Report) WriteFile(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}
	return nil
}

// Decode parses a report document from CBOR bytes. Used by tests and
// by tooling that post-processes probe runs.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("report: decoding: %w", err)
	}
	return &doc, nil
}
