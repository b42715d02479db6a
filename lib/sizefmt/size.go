// Copyright 2026 The Syscheck Authors
// SPDX-License-Identifier: Apache-2.0

package sizefmt

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
	tib = 1 << 40
)

// ParseSize converts a size literal to a byte count. Accepted forms:
//
//	1024          decimal bytes
//	0x400         hex bytes (integer only, no suffix)
//	2.5GB  2.5G   floating point with suffix
//	200 MB        optional whitespace before the suffix
//
// Suffixes are case-insensitive binary multipliers: B, K/KB, M/MB,
// G/GB, T/TB. Negative values and unknown suffixes are errors.
func ParseSize(text string) (uint64, error) {
	if text == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Hex form: integer only, no suffix.
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		value, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid hex size %q: %w", text, err)
		}
		return value, nil
	}

	// Split the leading number from any suffix.
	split := len(text)
	for i, r := range text {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' {
			split = i
			break
		}
	}
	number := text[:split]
	suffix := strings.TrimSpace(text[split:])

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", text, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("size cannot be negative: %q", text)
	}

	var multiplier float64
	switch strings.ToUpper(suffix) {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = kib
	case "M", "MB":
		multiplier = mib
	case "G", "GB":
		multiplier = gib
	case "T", "TB":
		multiplier = tib
	default:
		return 0, fmt.Errorf("unknown size suffix %q in %q", suffix, text)
	}

	return uint64(value * multiplier), nil
}

// FormatSize renders a byte count in the largest binary unit in which
// the value is at least one, with two decimal places, or as a plain
// byte count below 1 KiB.
func FormatSize(bytes uint64) string {
	switch {
	case bytes >= tib:
		return fmt.Sprintf("%.2f TB", float64(bytes)/tib)
	case bytes >= gib:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gib)
	case bytes >= mib:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mib)
	case bytes >= kib:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kib)
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}
