package types

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound reports a root path that does not exist.
	ErrNotFound = errors.New("path does not exist")
	// ErrNotADirectory reports a root path that is not a directory.
	ErrNotADirectory = errors.New("path is not a directory")
	// ErrIncompatibleConfig reports two trees built with different filters.
	ErrIncompatibleConfig = errors.New("trees were built with incompatible configurations")
	// ErrEntryUnavailable reports an entry whose metadata or content could not be read.
	ErrEntryUnavailable = errors.New("entry unavailable")
	// ErrCycleDetected reports a symbolic link that leads back to an ancestor directory.
	ErrCycleDetected = errors.New("symbolic link cycle detected")
)

// ConfigError describes an invalid configuration detected before any traversal.
type ConfigError struct {
	Pattern string
	Source  string
	Reason  string
	Err     error
}

func (configError *ConfigError) Error() string {
	var builder strings.Builder
	builder.WriteString("invalid configuration")
	if configError.Source != "" {
		builder.WriteString(" in ")
		builder.WriteString(configError.Source)
	}
	if configError.Pattern != "" {
		builder.WriteString(": pattern ")
		builder.WriteString("'" + configError.Pattern + "'")
	}
	if configError.Reason != "" {
		builder.WriteString(": ")
		builder.WriteString(configError.Reason)
	}
	if configError.Err != nil {
		builder.WriteString(": ")
		builder.WriteString(configError.Err.Error())
	}
	return builder.String()
}

func (configError *ConfigError) Unwrap() error {
	return configError.Err
}
