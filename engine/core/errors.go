package core

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfMemory        = errors.New("out of memory")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrUnsupported        = errors.New("not supported by this backend")
	ErrBackendUnavailable = errors.New("backend not available")
	ErrNoRenderer         = errors.New("no renderer available")
	ErrCompileFailed      = errors.New("shader compilation failed")
)

// ErrorCode is the GL error code an Error maps to at the GL object layer.
type ErrorCode uint32

const (
	CodeNoError          ErrorCode = 0
	CodeInvalidValue     ErrorCode = 0x0501
	CodeInvalidOperation ErrorCode = 0x0502
	CodeOutOfMemory      ErrorCode = 0x0505
)

func (c ErrorCode) String() string {
	switch c {
	case CodeNoError:
		return "GL_NO_ERROR"
	case CodeInvalidValue:
		return "GL_INVALID_VALUE"
	case CodeInvalidOperation:
		return "GL_INVALID_OPERATION"
	case CodeOutOfMemory:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("GL_ERROR(0x%04X)", uint32(c))
	}
}

// Error is the typed failure every fallible operation in the translation
// layer returns. It matches the sentinel for its code under errors.Is.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrOutOfMemory:
		return e.Code == CodeOutOfMemory
	case ErrInvalidOperation:
		return e.Code == CodeInvalidOperation
	}
	return false
}

// OutOfMemory reports a failed native allocation or a size computation that
// would have overflowed.
func OutOfMemory(format string, args ...interface{}) error {
	return &Error{Code: CodeOutOfMemory, Message: fmt.Sprintf(format, args...)}
}

func InvalidOperation(format string, args ...interface{}) error {
	return &Error{Code: CodeInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the GL error code carried by err, CodeNoError for nil, and
// CodeInvalidOperation for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeNoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, ErrOutOfMemory) {
		return CodeOutOfMemory
	}
	return CodeInvalidOperation
}

// Unreachable marks a broken internal contract. It never returns.
func Unreachable(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	LogError("internal error: %s", msg)
	panic("gles: " + msg)
}
