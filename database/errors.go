package database

import "github.com/KOMKZ/go-yogan-classevent/errcode"

// ModuleCode is the errcode module of the database package (82xxxx)
const ModuleCode = 82

var (
	// ErrInvalidConfig: a connection entry fails validation
	ErrInvalidConfig = errcode.Register(errcode.New(
		ModuleCode, 1, "database", "error.database.invalid_config", "invalid database config",
	))

	// ErrConnectionFailed: the driver could not open or ping a connection
	ErrConnectionFailed = errcode.Register(errcode.New(
		ModuleCode, 2, "database", "error.database.connection_failed", "database connection failed",
	))

	// ErrUnknownConnection: no connection is configured under the name
	ErrUnknownConnection = errcode.Register(errcode.New(
		ModuleCode, 3, "database", "error.database.unknown_connection", "unknown database connection",
	))
)
