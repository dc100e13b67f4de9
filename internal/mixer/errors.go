package mixer

import (
	"errors"
	"fmt"
)

// Code classifies every error the mixer reports.
type Code int

const (
	CodeUnknown Code = iota
	CodeInvalidParam
	CodeWrongState
	CodeMemoryFailed
)

func (c Code) String() string {
	switch c {
	case CodeInvalidParam:
		return "INVALID_PARAM"
	case CodeWrongState:
		return "WRONG_STATE"
	case CodeMemoryFailed:
		return "MEMORY_FAILED"
	default:
		return "UNKNOWN"
	}
}

// Error is returned by control and ingestion calls and delivered through
// Callback.OnError.
type Error struct {
	Code Code
	Op   string
	Err  error
}

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrInvalidParam = &Error{Code: CodeInvalidParam}
	ErrWrongState   = &Error{Code: CodeWrongState}
	ErrMemoryFailed = &Error{Code: CodeMemoryFailed}
	ErrUnknown      = &Error{Code: CodeUnknown}
)

func newError(code Code, op string, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Err: fmt.Errorf(format, args...)}
}

func wrapError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := "mixer: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Code.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches a bare sentinel (no Op, no Err) by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the Code from err, or CodeUnknown when err is not a mixer
// error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
