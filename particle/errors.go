package particle

import "fmt"

// ConfigError reports a ConfigurationError per the specification's error
// taxonomy (§7): admission-time validation failures are returned, never
// panicked.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("particle: invalid %s: %s", e.Field, e.Reason)
}

func configErr(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}
