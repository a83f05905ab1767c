package event

import (
	"errors"

	"github.com/KOMKZ/go-yogan-classevent/errcode"
)

// ModuleCode is the errcode module of the event package (80xxxx)
const ModuleCode = 80

const (
	ErrCodeMalformedHandler = 1
	ErrCodeUnknownType      = 2
	ErrCodeInvalidTarget    = 3
	ErrCodeRegistryClosed   = 4
)

var (
	// ErrMalformedHandler: a handler value matches none of the accepted shapes.
	// Always a programming error at the registration site.
	ErrMalformedHandler = errcode.Register(errcode.New(
		ModuleCode, ErrCodeMalformedHandler,
		"event", "error.event.malformed_handler", "malformed event handler",
	))

	// ErrUnknownType: a type name cannot be resolved
	ErrUnknownType = errcode.Register(errcode.New(
		ModuleCode, ErrCodeUnknownType,
		"event", "error.event.unknown_type", "unknown type",
	))

	// ErrInvalidTarget: a trigger target or bound type yields no type handle
	ErrInvalidTarget = errcode.Register(errcode.New(
		ModuleCode, ErrCodeInvalidTarget,
		"event", "error.event.invalid_target", "invalid event target",
	))

	ErrRegistryClosed = errcode.Register(errcode.New(
		ModuleCode, ErrCodeRegistryClosed,
		"event", "error.event.registry_closed", "event registry closed",
	))
)

// ErrStopPropagation may be returned by a handler instead of setting
// Handled. Trigger treats it as handled and does not report it.
var ErrStopPropagation = errors.New("stop propagation")
