// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds returned by this package. They are always wrapped with some
// context; use errors.Cause (or the standard library's errors.Is) to test for
// a specific kind:
//
//	if errors.Cause(err) == evsim.ErrWidthMismatch {
//		// ...
//	}
//
var (
	ErrWidthMismatch   = errors.New("width mismatch")
	ErrUnknownPort     = errors.New("unknown port")
	ErrMissingWidth    = errors.New("cannot determine port width")
	ErrImmutableWrite  = errors.New("write to constant bus")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// UnstableError is returned by Updater.Run when the pending event queue does
// not empty within Updater.MaxSteps steps. This usually means that the
// circuit contains a combinational loop that never settles.
//
type UnstableError struct {
	Steps  int       // steps run before giving up
	Recent []Circuit // last updated circuits, oldest first
}

func (e *UnstableError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit did not settle after %d steps", e.Steps)
	if len(e.Recent) > 0 {
		b.WriteString("; last updated:")
		for _, c := range e.Recent {
			b.WriteByte(' ')
			b.WriteString(circuitName(c))
		}
	}
	return b.String()
}

func circuitName(c Circuit) string {
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return c.Name()
}

func widthError(want, got int) error {
	return errors.Wrapf(ErrWidthMismatch, "expected %d bits, got %d", want, got)
}
