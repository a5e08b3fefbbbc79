package gen

import "errors"

// ErrAttemptsExhausted is returned by a capped walker when every attempt
// ended short of the target.
var ErrAttemptsExhausted = errors.New("gen: walk attempts exhausted")

// ConfigError reports generation parameters that can never succeed. It is
// raised before any randomness is consumed and is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "gen: " + e.Reason
}
