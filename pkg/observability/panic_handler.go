package observability

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// PanicError is a recovered panic converted to an error
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RecoverError converts the result of recover() into an error, logging the
// stack trace. It returns nil when r is nil.
//
// Usage:
//
//	func run() (err error) {
//	    defer func() {
//	        if perr := observability.RecoverError(recover(), logger, "stage"); perr != nil {
//	            err = perr
//	        }
//	    }()
//	    // ... code that might panic
//	}
func RecoverError(r any, logger logrus.FieldLogger, context string) error {
	if r == nil {
		return nil
	}
	perr := &PanicError{Value: r, Stack: debug.Stack()}
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"panic":   r,
			"stack":   string(perr.Stack),
			"context": context,
		}).Error("PANIC recovered")
	}
	return perr
}
