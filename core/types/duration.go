package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Duration Specification
//
// Cadence durations use a small, human-readable format: 1h2m3.5s
// The parser package owns the grammar; this file composes and formats values.
//
// Grammar:
//   duration  = [hours] [minutes] [seconds]     (at least one component)
//   hours     = digits ("h" | "H")
//   minutes   = digits ("m" | "M")
//   seconds   = digits ["." digits] ("s" | "S")
//
// Constraints:
//   1. Components appear in the fixed order hours, minutes, seconds
//   2. Components may be separated by horizontal whitespace only: "1m 30s"
//   3. Only seconds may carry a fraction: 1.5s ✓, 1.5m ✗
//   4. Fractions finer than a nanosecond are truncated
//   5. Total duration must not overflow int64 nanoseconds
//
// Canonical form (Format):
//   - hours, minutes, seconds in that order, zero components omitted
//   - seconds keep the shortest exact fraction: 3.5s, 0.25s
//   - zero is "0s"
//   - Examples: 90s -> "1m30s", 3600s -> "1h", 1.5s -> "1.5s"

// MaxDuration is the largest representable duration.
const MaxDuration = time.Duration(math.MaxInt64)

// Compose builds a duration from already-scanned literal components.
// wholeSeconds and fraction are digit strings; fraction may be empty.
func Compose(hours, minutes, wholeSeconds, fraction string) (time.Duration, error) {
	var total time.Duration
	add := func(digits string, unit time.Duration) error {
		if digits == "" {
			return nil
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return fmt.Errorf("number %q too large", digits)
		}
		if n > int64(MaxDuration/unit) {
			return fmt.Errorf("duration overflow")
		}
		part := time.Duration(n) * unit
		if total > MaxDuration-part {
			return fmt.Errorf("duration overflow")
		}
		total += part
		return nil
	}

	if err := add(hours, time.Hour); err != nil {
		return 0, err
	}
	if err := add(minutes, time.Minute); err != nil {
		return 0, err
	}
	if err := add(wholeSeconds, time.Second); err != nil {
		return 0, err
	}

	if fraction != "" {
		// pad/truncate to nanosecond precision
		if len(fraction) > 9 {
			fraction = fraction[:9]
		}
		fraction += strings.Repeat("0", 9-len(fraction))
		if err := add(strings.TrimLeft(fraction, "0"), time.Nanosecond); err != nil {
			return 0, err
		}
	}

	return total, nil
}

// Format returns the canonical literal for d. Negative durations are clamped
// to zero.
func Format(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	var b strings.Builder
	if h := d / time.Hour; h > 0 {
		fmt.Fprintf(&b, "%dh", h)
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		fmt.Fprintf(&b, "%dm", m)
		d -= m * time.Minute
	}
	if d > 0 {
		whole := d / time.Second
		frac := d % time.Second
		if frac == 0 {
			fmt.Fprintf(&b, "%ds", whole)
		} else {
			digits := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
			fmt.Fprintf(&b, "%d.%ss", whole, digits)
		}
	}
	return b.String()
}

// ClampSub returns a-b, never below zero.
func ClampSub(a, b time.Duration) time.Duration {
	if b >= a {
		return 0
	}
	return a - b
}

// SaturatingAdd returns a+b, clamped to MaxDuration.
func SaturatingAdd(a, b time.Duration) time.Duration {
	if a > MaxDuration-b {
		return MaxDuration
	}
	return a + b
}
