package core

import (
	"fmt"

	"github.com/df07/go-material-eval/pkg/log"
)

var checkLogger = log.New("check")

// FatalError is the panic value raised when an evaluation reaches a path that
// malformed scene data or a caller logic error should have made unreachable.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Message
}

// Fatalf logs the message and panics with a *FatalError.
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	checkLogger.Error(msg)
	panic(&FatalError{Message: msg})
}

// CheckFatal calls Fatalf when cond is false. It is always enabled.
func CheckFatal(cond bool, format string, args ...interface{}) {
	if !cond {
		Fatalf(format, args...)
	}
}

// DCheck is like CheckFatal but compiled in only with the debug build tag.
func DCheck(cond bool, format string, args ...interface{}) {
	if DebugChecks && !cond {
		Fatalf(format, args...)
	}
}
