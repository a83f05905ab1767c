package typesys

import "github.com/KOMKZ/go-yogan-classevent/errcode"

// ModuleCode is the errcode module of the typesys package (81xxxx)
const ModuleCode = 81

var (
	// ErrTypeExists: a class name is defined twice in one namespace
	ErrTypeExists = errcode.Register(errcode.New(
		ModuleCode, 1, "typesys", "error.typesys.type_exists", "type already defined",
	))

	// ErrInvalidDefinition: empty class name, foreign parent or unusable Go sample
	ErrInvalidDefinition = errcode.Register(errcode.New(
		ModuleCode, 2, "typesys", "error.typesys.invalid_definition", "invalid type definition",
	))
)
