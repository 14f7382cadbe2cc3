// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Scriptor.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Scriptor errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeMissingNode indicates an edge referenced an unknown graph node.
	CodeMissingNode ErrorCode = "MISSING_NODE"

	// CodeUnknownRole indicates activation of an undefined role.
	CodeUnknownRole ErrorCode = "UNKNOWN_ROLE"

	// CodeManifestError indicates a manifest could not be parsed or built.
	CodeManifestError ErrorCode = "MANIFEST_ERROR"

	// CodeStorageError indicates a journal persistence error.
	CodeStorageError ErrorCode = "STORAGE_ERROR"
)

// ScriptorError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type ScriptorError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *ScriptorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *ScriptorError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *ScriptorError) MarshalJSON() ([]byte, error) {
	type Alias ScriptorError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new ScriptorError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *ScriptorError {
	return &ScriptorError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *ScriptorError) WithContext(key string, value interface{}) *ScriptorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *ScriptorError) WithAttribute(key, value string) *ScriptorError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *ScriptorError) WithRecoverable(recoverable bool) *ScriptorError {
	e.Recoverable = recoverable
	return e
}

// AsScriptorError attempts to convert an error to a ScriptorError.
// Returns the error as ScriptorError if it is one, or wraps it otherwise.
func AsScriptorError(err error) *ScriptorError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*ScriptorError); ok {
		return se
	}
	return New(CodeInternal, "wrapped error", err)
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *ScriptorError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}
