// Package invariant reports internal consistency failures.
//
// A Violation means the program itself is wrong (or its input was corrupted
// in a way the parsers should have rejected). It is never recorded as a
// per-sequence outcome: whoever receives one aborts the run.
package invariant

import (
	"errors"
	"fmt"
)

// Violation is returned when an internal consistency check fails.
type Violation struct {
	// Check names the invariant that failed.
	Check string
	// Detail carries the offending values.
	Detail string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("invariant violation (%s): %s", v.Check, v.Detail)
}

// IsFatal marks a Violation as a run-terminating error.
func (v *Violation) IsFatal() {}

// Newf builds a Violation with a formatted detail message.
func Newf(check, format string, args ...interface{}) *Violation {
	return &Violation{Check: check, Detail: fmt.Sprintf(format, args...)}
}

// Fatal is implemented by every error kind that must terminate a run.
type Fatal interface {
	error
	IsFatal()
}

// IsFatal reports whether err, or anything it wraps, terminates a run.
func IsFatal(err error) bool {
	var f Fatal
	return errors.As(err, &f)
}
