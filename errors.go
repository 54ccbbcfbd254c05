package larder

import "errors"

var (
	// ErrUnknownConfigKey is returned when a config file has keys larder does not read.
	ErrUnknownConfigKey = errors.New("unknown config key")

	// ErrInvalidConfig is returned when a loaded config fails validation.
	ErrInvalidConfig = errors.New("invalid config")
)
