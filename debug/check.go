package debug

import "fmt"

// Fault is the value passed to panic by Check and CheckErrNil. A Fault is an
// unrecoverable condition, the process is expected to crash.
type Fault struct {
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("fatal: %s: %v", f.Message, f.Err)
	}
	return "fatal: " + f.Message
}

func (f *Fault) Unwrap() error { return f.Err }

// Check panics with a *Fault if b is false. Unlike Assert it is active in
// release builds.
func Check(b bool, message string) {
	if !b {
		panic(&Fault{Message: message})
	}
}

// CheckErrNil panics with a *Fault wrapping err if err is not nil.
func CheckErrNil(err error, message string) {
	if err != nil {
		panic(&Fault{Message: message, Err: err})
	}
}
