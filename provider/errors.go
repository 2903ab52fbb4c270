package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports a store or plugin misconfiguration, such as a missing currency
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// PreconditionError reports a required domain entity that could not be resolved
type PreconditionError struct {
	Entity  string
	Message string
}

func (e *PreconditionError) Error() string {
	if e.Entity == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

// ValidationErrors is a list of user-facing messages from submitted form checks
type ValidationErrors []string

func (e ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(e, "; ")
}

// GatewayError carries a message reported by a gateway for an operation that has no outcome value
type GatewayError struct {
	Operation string
	Message   string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s declined: %s", e.Operation, e.Message)
}

// NewConfigurationError formats a ConfigurationError
func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// NewPreconditionError builds a PreconditionError for the named entity
func NewPreconditionError(entity, message string) error {
	return &PreconditionError{Entity: entity, Message: message}
}

// IsConfigurationError reports whether err wraps a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsPreconditionError reports whether err wraps a PreconditionError
func IsPreconditionError(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}
