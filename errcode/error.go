// Package errcode provides layered error codes shared by every framework module.
// Code format: MMBBBB (MM = module code, BBBB = business code).
package errcode

import "fmt"

// LayeredError carries a stable numeric code, a message key for translation,
// optional context data and an optional cause.
type LayeredError struct {
	module string
	code   int
	msgKey string
	msg    string
	data   map[string]any
	cause  error
}

// New creates a layered error.
// moduleCode: 10-99, businessCode: 0001-9999.
func New(moduleCode, businessCode int, module, msgKey, msg string) *LayeredError {
	return &LayeredError{
		module: module,
		code:   moduleCode*10000 + businessCode,
		msgKey: msgKey,
		msg:    msg,
		data:   make(map[string]any),
	}
}

func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full MMBBBB code
func (e *LayeredError) Code() int { return e.code }

// Module returns the owning module name
func (e *LayeredError) Module() string { return e.module }

// MsgKey returns the translation key
func (e *LayeredError) MsgKey() string { return e.msgKey }

// Message returns the message without the cause
func (e *LayeredError) Message() string { return e.msg }

// Data returns the context data
func (e *LayeredError) Data() map[string]any { return e.data }

// Unwrap exposes the cause to errors.Is / errors.As
func (e *LayeredError) Unwrap() error { return e.cause }

// WithMsgf returns a copy with a formatted message
func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData returns a copy with one more context value
func (e *LayeredError) WithData(key string, value any) *LayeredError {
	clone := *e
	clone.data = make(map[string]any, len(e.data)+1)
	for k, v := range e.data {
		clone.data[k] = v
	}
	clone.data[key] = value
	return &clone
}

// Wrap returns a copy carrying cause; a nil cause returns e itself
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// Is matches any LayeredError with the same code, so derived copies
// (WithMsgf, WithData, Wrap) still satisfy errors.Is against the sentinel.
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

// String is the debug representation
func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}", e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}", e.code, e.module, e.msg)
}
