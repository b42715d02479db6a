// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"testing"
)

func TestAlloc_CleanCheck(t *testing.T) {
	for _, size := range []int{1, 32, 64, 4096, 65536} {
		buf, err := Alloc(size)
		if err != nil {
			t.Fatalf("Alloc(%d) failed: %v", size, err)
		}
		result := buf.Check("fresh")
		if !result.OK() {
			t.Errorf("Alloc(%d): fresh buffer has %d head / %d tail errors",
				size, result.HeadErrors, result.TailErrors)
		}
		buf.Release()
	}
}

func TestAlloc_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := Alloc(size); err == nil {
			t.Errorf("Alloc(%d) succeeded, want error", size)
		}
	}
}

func TestAlloc_UsableRegionPrefilled(t *testing.T) {
	buf, err := Alloc(128)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	data := buf.Data()
	if len(data) != 128 {
		t.Fatalf("Data() length = %d, want 128", len(data))
	}
	for i, b := range data {
		if b != BufferFill {
			t.Fatalf("usable byte %d = 0x%02X, want 0x%02X", i, b, BufferFill)
		}
	}
}

func TestCheck_DetectsTailOverflow(t *testing.T) {
	buf, err := Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	// Simulate a three-byte overflow: write past the declared length
	// through the raw slice the way a miscounting callee would.
	raw := buf.raw[HeadGuardSize+64:]
	raw[4] = 0x00
	raw[5] = 0x01
	raw[6] = 0x02

	result := buf.Check("overflow")
	if result.TailErrors != 3 {
		t.Errorf("TailErrors = %d, want 3", result.TailErrors)
	}
	if result.HeadErrors != 0 {
		t.Errorf("HeadErrors = %d, want 0", result.HeadErrors)
	}
	if len(result.Violations) != 3 {
		t.Fatalf("got %d verbatim violations, want 3", len(result.Violations))
	}
	first := result.Violations[0]
	if first.Region != Tail || first.Offset != 4 || first.Observed != 0x00 || first.Expected != GuardFill {
		t.Errorf("first violation = %+v", first)
	}
}

func TestCheck_DetectsHeadUnderflow(t *testing.T) {
	buf, err := Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	buf.raw[10] = 0xFF

	result := buf.Check("underflow")
	if result.HeadErrors != 1 || result.TailErrors != 0 {
		t.Errorf("head/tail errors = %d/%d, want 1/0", result.HeadErrors, result.TailErrors)
	}
	if result.Violations[0].Region != Head {
		t.Errorf("violation region = %v, want Head", result.Violations[0].Region)
	}
}

func TestCheck_DetectsMagicDamage(t *testing.T) {
	buf, err := Alloc(32)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	buf.raw[0] ^= 0xFF // first byte of the head magic word

	result := buf.Check("magic")
	if result.HeadErrors != 1 {
		t.Fatalf("HeadErrors = %d, want 1", result.HeadErrors)
	}
	if result.Violations[0].Offset != 0 {
		t.Errorf("magic damage reported at offset %d, want 0", result.Violations[0].Offset)
	}
}

func TestCheck_CapsVerbatimReports(t *testing.T) {
	buf, err := Alloc(32)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	// Smash the entire tail guard.
	tail := buf.raw[HeadGuardSize+32:]
	for i := range tail {
		tail[i] = 0xEE
	}

	result := buf.Check("smash")
	if result.TailErrors != TailGuardSize {
		t.Errorf("TailErrors = %d, want %d", result.TailErrors, TailGuardSize)
	}
	if len(result.Violations) != maxReported {
		t.Errorf("verbatim violations = %d, want %d", len(result.Violations), maxReported)
	}
}

func TestCheck_PureOnBufferContents(t *testing.T) {
	buf, err := Alloc(64)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	buf.raw[HeadGuardSize+70] = 0x33 // one tail byte

	before := append([]byte(nil), buf.raw...)
	buf.Check("first")
	buf.Check("second")
	for i := range before {
		if buf.raw[i] != before[i] {
			t.Fatalf("Check modified allocation at byte %d", i)
		}
	}
}

func TestWritesInsideUsableRegionAreClean(t *testing.T) {
	buf, err := Alloc(256)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	data := buf.Data()
	for i := range data {
		data[i] = byte(i)
	}
	if result := buf.Check("full in-bounds write"); !result.OK() {
		t.Errorf("in-bounds writes tripped the guard: %+v", result.Violations)
	}
}

func TestRefill(t *testing.T) {
	buf, err := Alloc(16)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	defer buf.Release()

	buf.Data()[3] = 0x01
	buf.Refill()
	for i, b := range buf.Data() {
		if b != BufferFill {
			t.Fatalf("after Refill byte %d = 0x%02X", i, b)
		}
	}
}

func TestRelease_Idempotent(t *testing.T) {
	buf, err := Alloc(16)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if err := buf.Release(); err != nil {
		t.Fatalf("Release of a live mapping failed: %v", err)
	}
	if err := buf.Release(); err != nil {
		t.Fatalf("second Release not a clean no-op: %v", err)
	}
}

func TestData_PanicsAfterRelease(t *testing.T) {
	buf, err := Alloc(16)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	buf.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("Data() on released buffer did not panic")
		}
	}()
	_ = buf.Data()
}
