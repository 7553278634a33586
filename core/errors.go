/*
Package core holds infrastructure shared by all packages of the cascade engine.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package core

import (
	"errors"
	"fmt"
)

// ErrorCode classifies errors of the cascade engine.
type ErrorCode int

// General error codes
const (
	NOERROR     ErrorCode = 0
	EMISSING    ErrorCode = 122 // typeface, style, font file or document does not exist
	EINVALID    ErrorCode = 123 // input failed validation
	ECONNECTION ErrorCode = 124 // store not reachable
	EINTERNAL   ErrorCode = 125 // internal error
	ETIMEOUT    ErrorCode = 126 // operation did not complete in time
	EDUPLICATE  ErrorCode = 127 // item is already present
)

var codeNames = map[ErrorCode]string{
	NOERROR:     "OK",
	EMISSING:    "not found",
	EINVALID:    "invalid",
	ECONNECTION: "store error",
	EINTERNAL:   "internal error",
	ETIMEOUT:    "timeout",
	EDUPLICATE:  "duplicate",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "undefined error"
}

// AppError is an error with an associated error code and a user-message.
type AppError interface {
	error
	ErrorCode() ErrorCode
	UserMessage() string
}

type cascadeError struct {
	cause error // nil for errors created by Error
	code  ErrorCode
	msg   string
}

var _ AppError = cascadeError{}

func (e cascadeError) Unwrap() error {
	return e.cause
}

func (e cascadeError) Error() string {
	switch {
	case e.cause == nil:
		return fmt.Sprintf("[%d] %s", e.code, e.msg)
	case e.msg == "":
		return fmt.Sprintf("[%d] %v", e.code, e.cause)
	}
	return fmt.Sprintf("[%d] %s: %v", e.code, e.msg, e.cause)
}

func (e cascadeError) ErrorCode() ErrorCode {
	return e.code
}

func (e cascadeError) UserMessage() string {
	if e.msg == "" {
		return e.code.String()
	}
	return e.msg
}

// ErrorWithCode adds an error code to err's error chain.
// A nil err is replaced by an error carrying the code's default text.
func ErrorWithCode(err error, code ErrorCode) error {
	if err == nil {
		return cascadeError{code: code, msg: code.String()}
	}
	return cascadeError{cause: err, code: code}
}

// WrapError wraps an error in an application error, featuring an error code
// and a user message.
func WrapError(err error, code ErrorCode, format string, v ...interface{}) error {
	return cascadeError{cause: err, code: code, msg: fmt.Sprintf(format, v...)}
}

// Error creates an error with an error code and a user-message.
func Error(code ErrorCode, format string, v ...interface{}) error {
	return cascadeError{code: code, msg: fmt.Sprintf(format, v...)}
}

// Code returns the status code associated with an error.
// If no status code is found, it returns EINTERNAL.
// If err is nil, NOERROR is returned.
func Code(err error) ErrorCode {
	if err == nil {
		return NOERROR
	}
	var e AppError
	if errors.As(err, &e) {
		return e.ErrorCode()
	}
	return EINTERNAL
}

// UserMessage returns the user message associated with an error.
// Errors without a message report the text of their code.
// If err is nil, it returns "".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e AppError
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return Code(err).String()
}
