package ecs

import "fmt"

// AssertionError marks a programming-error-class failure: a system with
// no subsystems and no overridden Process, an observer whose Watch()
// returns an empty key, a query executed against a non-component value.
// These are side-effect-free in release builds and only raised (as a
// panic) when the world's Config.Debug is set, per spec.md §7.
type AssertionError struct {
	Op      string
	Message string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("ecs: assertion failed in %s: %s", e.Op, e.Message)
}

// debugAssert panics with an AssertionError when debug is enabled and cond
// is false; it is a silent no-op otherwise, matching "fatal in debug, noop
// in release".
func debugAssert(debug bool, cond bool, op, message string) {
	if debug && !cond {
		panic(&AssertionError{Op: op, Message: message})
	}
}
