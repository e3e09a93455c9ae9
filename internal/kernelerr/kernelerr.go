// Package kernelerr defines the kernel's error taxonomy.
//
// The kernel has no I/O errors to recover from at steady state: configuration
// and asset errors can only occur during initialization, and invariant
// violations can only occur at a year boundary. Every error the kernel
// returns is one of the three typed errors below so callers (cmd/worldsim)
// can map them to exit codes without string-matching.
package kernelerr

import "fmt"

// ConfigError wraps a configuration problem discovered during initialization:
// a missing file, a bad value, or a required key with no default.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config: %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError for a named key.
func NewConfigError(key string, err error) error {
	return &ConfigError{Key: key, Err: err}
}

// AssetSizeError reports that an input layer image's dimensions did not
// match the base map.
type AssetSizeError struct {
	Layer        string
	Width        int
	Height       int
	ExpectWidth  int
	ExpectHeight int
}

func (e *AssetSizeError) Error() string {
	return fmt.Sprintf("asset size mismatch: %s is %dx%d, expected %dx%d",
		e.Layer, e.Width, e.Height, e.ExpectWidth, e.ExpectHeight)
}

// InvariantError reports an invariant violated during a simulated year.
type InvariantError struct {
	Year   int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("year %d: invariant violated: %s", e.Year, e.Reason)
}

// NewInvariantError builds an InvariantError for the given year and reason.
func NewInvariantError(year int, reason string) error {
	return &InvariantError{Year: year, Reason: reason}
}
