// Package invariant provides contract assertions for cadence.
//
// Routines are validated when they are built, not when they run: a negative
// wait, a negative set count or a missing collaborator is a programming error
// in whoever constructed the value, so it panics immediately at the call site
// that introduced it. Use Precondition for argument checks and Invariant for
// internal consistency checks.
//
// All functions panic on violation - these are programming errors, not user errors.
// User errors (bad markup) are reported by the parser as values.
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

// Precondition checks an input contract at function entry.
// Panics with PRECONDITION VIOLATION if condition is false.
//
// Example:
//
//	func NewExercise(name string, sets, reps int, pairs []MatcherAction) *Exercise {
//	    invariant.Precondition(sets >= 0, "set count must be non-negative, got %d", sets)
//	    // ... build ...
//	}
func Precondition(condition bool, format string, args ...any) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before function return.
// Panics with POSTCONDITION VIOLATION if condition is false.
func Postcondition(condition bool, format string, args ...any) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks an internal invariant during function execution.
// Panics with INVARIANT VIOLATION if condition is false.
//
// Example:
//
//	switch a := action.(type) {
//	case *routine.Wait:
//	    // ...
//	default:
//	    invariant.Invariant(false, "unknown action type: %T", action)
//	}
func Invariant(condition bool, format string, args ...any) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil, including typed nils such as (*T)(nil)
// stored in an interface.
func NotNil(value any, name string) {
	if isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNilValue(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// NonNegative panics if a count is below zero.
func NonNegative(value int, name string) {
	if value < 0 {
		fail("PRECONDITION", "%s must be non-negative, got %d", name, value)
	}
}

// NonNegativeDuration panics if a configured duration is below zero.
//
// Example:
//
//	func NewWait(delay time.Duration) *Wait {
//	    invariant.NonNegativeDuration(delay, "wait delay")
//	    return &Wait{delay: delay}
//	}
func NonNegativeDuration(d time.Duration, name string) {
	if d < 0 {
		fail("PRECONDITION", "%s must be non-negative, got %s", name, d)
	}
}

// fail panics with a formatted message including the violating call site.
func fail(kind, format string, args ...any) {
	// skip fail() and the exported wrapper
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]any{kind}, args...)...)

	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
