package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeDataFormat ErrorType = "DATA_FORMAT"
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeFit        ErrorType = "FIT"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewDataFormatError creates an error for malformed or unparseable input data
func NewDataFormatError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataFormat, message, cause)
}

// NewSchemaError creates an error for datasets missing required columns
// or carrying incompatible column types
func NewSchemaError(message string, cause error) *AppError {
	return NewAppError(ErrTypeSchema, message, cause)
}

// NewFitError creates an error for model training failures
func NewFitError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFit, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// hasType reports whether err wraps an AppError of the given type
func hasType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsDataFormatError reports whether err is a data format error
func IsDataFormatError(err error) bool {
	return hasType(err, ErrTypeDataFormat)
}

// IsSchemaError reports whether err is a schema error
func IsSchemaError(err error) bool {
	return hasType(err, ErrTypeSchema)
}

// IsFitError reports whether err is a model fit error
func IsFitError(err error) bool {
	return hasType(err, ErrTypeFit)
}

// IsNotFoundError reports whether err is a not found error
func IsNotFoundError(err error) bool {
	return hasType(err, ErrTypeNotFound)
}
