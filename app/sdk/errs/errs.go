// Package errs provides types and support related to web error functionality.
package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// Error represents an error in the system.
type Error struct {
	Code     ErrCode `json:"code"`
	Message  string  `json:"message"`
	FuncName string  `json:"-"`
	FileName string  `json:"-"`
}

// New constructs an error based on an app error.
func New(code ErrCode, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf constructs an error based on an error message.
func Newf(code ErrCode, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Errorf constructs an error based on an error message.
func Errorf(code ErrCode, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	data, err := json.Marshal(e)
	return data, "application/json", err
}

// HTTPStatus implements the web package httpStatus interface so the
// web framework can use the correct http status.
func (e *Error) HTTPStatus() int {
	return httpStatus[e.Code]
}

// Equal provides support for the go-cmp package and testing.
func (e *Error) Equal(e2 *Error) bool {
	return e.Code == e2.Code && e.Message == e2.Message
}

// IsError tests the concrete error is of the Error type.
func IsError(err error) bool {
	var er *Error
	return errors.As(err, &er)
}

// GetError returns a copy of the Error pointer.
func GetError(err error) *Error {
	var er *Error
	if !errors.As(err, &er) {
		return &Error{}
	}
	return er
}

// =============================================================================

// ErrCode represents a code in the system.
type ErrCode struct {
	value int
}

// Value returns the integer value of the error code.
func (ec ErrCode) Value() int {
	return ec.value
}

// String returns the string representation of the error code.
func (ec ErrCode) String() string {
	return codeNames[ec.value]
}

// MarshalText implement the marshal interface for JSON conversions.
func (ec ErrCode) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

// The set of error codes for the system.
var (
	OK               = ErrCode{value: 0}
	Canceled         = ErrCode{value: 1}
	Unknown          = ErrCode{value: 2}
	InvalidArgument  = ErrCode{value: 3}
	DeadlineExceeded = ErrCode{value: 4}
	NotFound         = ErrCode{value: 5}
	AlreadyExists    = ErrCode{value: 6}
	PermissionDenied = ErrCode{value: 7}
	Aborted          = ErrCode{value: 10}
	Internal         = ErrCode{value: 13}
	Unavailable      = ErrCode{value: 14}
	Unauthenticated  = ErrCode{value: 16}
	InternalOnlyLog  = ErrCode{value: 17}
)

var codeNames = map[int]string{
	0:  "ok",
	1:  "canceled",
	2:  "unknown",
	3:  "invalid_argument",
	4:  "deadline_exceeded",
	5:  "not_found",
	6:  "already_exists",
	7:  "permission_denied",
	10: "aborted",
	13: "internal",
	14: "unavailable",
	16: "unauthenticated",
	17: "internal",
}

var httpStatus = map[ErrCode]int{
	OK:               http.StatusOK,
	Canceled:         http.StatusGatewayTimeout,
	Unknown:          http.StatusInternalServerError,
	InvalidArgument:  http.StatusBadRequest,
	DeadlineExceeded: http.StatusGatewayTimeout,
	NotFound:         http.StatusNotFound,
	AlreadyExists:    http.StatusConflict,
	PermissionDenied: http.StatusForbidden,
	Aborted:          http.StatusConflict,
	Unavailable:      http.StatusServiceUnavailable,
	Unauthenticated:  http.StatusUnauthorized,
	Internal:         http.StatusInternalServerError,
	InternalOnlyLog:  http.StatusInternalServerError,
}
