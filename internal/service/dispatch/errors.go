package dispatch

import (
	"errors"
	"fmt"
)

// ConfigurationError flags an invalid target setup detected before any
// network activity. It aborts the whole dispatch for that target and is
// the only error class the dispatcher surfaces synchronously.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("webhook configuration: %s", e.Reason)
}

func configErrorf(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
