//go:build debug

package debug

// Enabled reports whether assertions are compiled in. Use it to guard
// expensive checks: if debug.Enabled { ... }
const Enabled = true

// Assert panics with a *Fault if b is false.
func Assert(b bool, message string) {
	if !b {
		panic(&Fault{Message: "assertion failed: " + message})
	}
}

// AssertErrNil panics with a *Fault wrapping err if err is not nil.
func AssertErrNil(err error) {
	if err != nil {
		panic(&Fault{Message: "assertion failed", Err: err})
	}
}
