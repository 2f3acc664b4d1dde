// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Paideia.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Paideia errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeMissingContext indicates a required context field was absent or empty.
	CodeMissingContext ErrorCode = "MISSING_CONTEXT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates authorization failed.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeLLMError indicates an LLM provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"

	// CodeVectorError indicates a vector store error.
	CodeVectorError ErrorCode = "VECTOR_ERROR"

	// CodeStoreError indicates a persistence layer error.
	CodeStoreError ErrorCode = "STORE_ERROR"
)

// PaideiaError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type PaideiaError struct {
	Code       ErrorCode
	Message    string
	Err        error
	Context    map[string]interface{}
	StatusCode int // For HTTP responses
}

// Error implements the error interface.
func (e *PaideiaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *PaideiaError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *PaideiaError) MarshalJSON() ([]byte, error) {
	type Alias PaideiaError
	return json.Marshal(&struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Err     string `json:"error,omitempty"`
		*Alias
	}{
		Message: e.Error(),
		Code:    string(e.Code),
		Err:     fmt.Sprintf("%v", e.Err),
		Alias:   (*Alias)(e),
	})
}

// New creates a new PaideiaError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *PaideiaError {
	return &PaideiaError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *PaideiaError) WithContext(key string, value interface{}) *PaideiaError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// AsPaideiaError attempts to convert an error to a PaideiaError.
// Returns the error as PaideiaError if it is one, or wraps it otherwise.
func AsPaideiaError(err error) *PaideiaError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*PaideiaError); ok {
		return pe
	}
	return New(CodeInternal, "wrapped error", err)
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeUnauthorized:
		return 401
	case CodeInvalidInput, CodeMissingContext:
		return 400
	default:
		return 500
	}
}
