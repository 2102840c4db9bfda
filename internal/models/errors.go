package models

import "fmt"

// ConfigurationError reports missing or malformed connection settings.
// Detected before any network call and never retried.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}
