// internal/timing/errors.go
package timing

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// ErrContractViolation marks a programming error in the caller,
// never an environmental failure.
var ErrContractViolation = errors.New("timing: contract violation")

// ContractError carries the diagnostic context of a violated precondition.
type ContractError struct {
	Op     string
	Device string
	Site   CallSite
	Err    error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("timing: %s: contract violation at %s on %s: %v", e.Op, e.Site, e.Device, e.Err)
}

func (e *ContractError) Unwrap() []error {
	return []error{ErrContractViolation, e.Err}
}

// CallSite identifies where a sleep or check was requested.
type CallSite struct {
	Func string
	File string
	Line int
}

// Caller captures the call site of the function calling Caller.
func Caller() CallSite {
	pc, file, line, ok := runtime.Caller(1)
	if !ok {
		return CallSite{}
	}
	site := CallSite{File: filepath.Base(file), Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		site.Func = fn.Name()
	}
	return site
}

func (c CallSite) String() string {
	if c.File == "" {
		return "unknown"
	}
	return fmt.Sprintf("%s() %s:%d", c.Func, c.File, c.Line)
}
