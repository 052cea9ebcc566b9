//go:build !debug

// Package debug distinguishes two kinds of runtime checks. Assertions guard
// internal invariants and are only compiled in with the debug build tag.
// Checks guard contract violations by callers and always panic on failure.
package debug

const Enabled = false

func Assert(b bool, message string) {}

func AssertErrNil(err error) {}
