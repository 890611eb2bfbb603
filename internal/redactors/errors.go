// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"fmt"
)

// RedactionErrorType defines the type of redaction error
type RedactionErrorType int

const (
	// ErrorPositionMapping indicates an entity span that does not fit the text
	ErrorPositionMapping RedactionErrorType = iota

	// ErrorConfiguration indicates a configuration error
	ErrorConfiguration
)

// String returns the string representation of the error type
func (ret RedactionErrorType) String() string {
	switch ret {
	case ErrorPositionMapping:
		return "position_mapping"
	case ErrorConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// RedactionError represents an error that occurred during redaction
type RedactionError struct {
	// Type is the type of error
	Type RedactionErrorType

	// Message is the error message
	Message string

	// EntityID identifies the offending entity, if any
	EntityID string

	// Cause is the underlying error that caused this error
	Cause error
}

// Error implements the error interface
func (re *RedactionError) Error() string {
	msg := fmt.Sprintf("[%s] %s", re.Type.String(), re.Message)
	if re.EntityID != "" {
		msg += fmt.Sprintf(" (entity: %s)", re.EntityID)
	}
	if re.Cause != nil {
		msg += ": " + re.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error unwrapping
func (re *RedactionError) Unwrap() error {
	return re.Cause
}

// NewRedactionError creates a new RedactionError
func NewRedactionError(errorType RedactionErrorType, message, entityID string, cause error) *RedactionError {
	return &RedactionError{
		Type:     errorType,
		Message:  message,
		EntityID: entityID,
		Cause:    cause,
	}
}
