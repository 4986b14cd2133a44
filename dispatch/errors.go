package dispatch

import "errors"

// Sentinel errors returned by Execute. "Not found" is not among
// them — Get and Del report a miss as their documented nil/0 reply,
// never as an error.
var (
	// ErrWrongType is returned when a container key already names a
	// value that isn't a bilist container.
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

	// ErrWrongArity is returned when a command receives the wrong
	// number of arguments.
	ErrWrongArity = errors.New("ERR wrong number of arguments")

	// ErrInvalidExpireTime is returned when a set command's ttl
	// argument doesn't parse as an integer.
	ErrInvalidExpireTime = errors.New("ERR Invalid expire time")

	// ErrInvalidCountParameter is returned when a ckey command's count
	// argument isn't a non-negative integer.
	ErrInvalidCountParameter = errors.New("ERR invalid count parameter")

	// ErrUnknownCommand is returned for a command name not in the
	// table.
	ErrUnknownCommand = errors.New("ERR unknown command")
)
