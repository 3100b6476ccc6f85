package invariant_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/aledsdavies/cadence/core/invariant"
	"github.com/stretchr/testify/assert"
)

// panicMessage runs fn and returns the recovered panic message ("" if none).
func panicMessage(fn func()) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%v", r)
		}
	}()
	fn()
	return ""
}

func TestPrecondition(t *testing.T) {
	assert.Empty(t, panicMessage(func() { invariant.Precondition(true, "never") }))

	msg := panicMessage(func() { invariant.Precondition(false, "sets must be %d or more", 0) })
	assert.Contains(t, msg, "PRECONDITION VIOLATION")
	assert.Contains(t, msg, "sets must be 0 or more")
	assert.Contains(t, msg, "at ")
}

func TestPostconditionAndInvariant(t *testing.T) {
	assert.Contains(t, panicMessage(func() { invariant.Postcondition(false, "progress regressed") }), "POSTCONDITION VIOLATION")
	assert.Contains(t, panicMessage(func() { invariant.Invariant(false, "unknown action %T", 1) }), "INVARIANT VIOLATION: unknown action int")
}

func TestNotNil(t *testing.T) {
	var typedNil *int
	var iface fmt.Stringer

	assert.Contains(t, panicMessage(func() { invariant.NotNil(nil, "speaker") }), "speaker must not be nil")
	assert.Contains(t, panicMessage(func() { invariant.NotNil(typedNil, "ptr") }), "ptr must not be nil")
	assert.Contains(t, panicMessage(func() { invariant.NotNil(iface, "iface") }), "iface must not be nil")
	assert.Empty(t, panicMessage(func() { invariant.NotNil(new(int), "ptr") }))
	assert.Empty(t, panicMessage(func() { invariant.NotNil(42, "value") }))
}

func TestNonNegative(t *testing.T) {
	assert.Empty(t, panicMessage(func() { invariant.NonNegative(0, "reps") }))
	assert.Contains(t, panicMessage(func() { invariant.NonNegative(-1, "reps") }), "reps must be non-negative, got -1")

	assert.Empty(t, panicMessage(func() { invariant.NonNegativeDuration(0, "wait") }))
	assert.Contains(t,
		panicMessage(func() { invariant.NonNegativeDuration(-time.Second, "wait") }),
		"wait must be non-negative, got -1s")
}
