package errors

import (
	stderrors "errors"
	"fmt"
)

// Application error types organized by category for better error handling

type ErrorType int

// Domain errors - errors related to request validation and fusion rules
const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeValidation
	ErrorTypeNotFound
	ErrorTypeRegionNotFound
	ErrorTypeMalformedRecord

	// Infrastructure Errors - errors related to external systems and services
	ErrorTypeDatabase
	ErrorTypeExternalAPI
	ErrorTypeProviderUnavailable

	// System/Configuration Errors - errors related to system setup and configuration
	ErrorTypeConfiguration
	ErrorTypeInternal
)

// String returns the string representation of error type
func (e ErrorType) String() string {
	switch e {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND_ERROR"
	case ErrorTypeRegionNotFound:
		return "REGION_NOT_FOUND_ERROR"
	case ErrorTypeMalformedRecord:
		return "MALFORMED_RECORD_ERROR"
	case ErrorTypeDatabase:
		return "DATABASE_ERROR"
	case ErrorTypeExternalAPI:
		return "EXTERNAL_API_ERROR"
	case ErrorTypeProviderUnavailable:
		return "PROVIDER_UNAVAILABLE_ERROR"
	case ErrorTypeConfiguration:
		return "CONFIGURATION_ERROR"
	case ErrorTypeInternal:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Short aliases used across adapters
const (
	ValidationError          = ErrorTypeValidation
	NotFoundError            = ErrorTypeNotFound
	RegionNotFoundError      = ErrorTypeRegionNotFound
	MalformedRecordError     = ErrorTypeMalformedRecord
	DatabaseError            = ErrorTypeDatabase
	ExternalAPIError         = ErrorTypeExternalAPI
	ProviderUnavailableError = ErrorTypeProviderUnavailable
	ConfigurationError       = ErrorTypeConfiguration
	InternalError            = ErrorTypeInternal
)

type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

func Wrap(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// Domain Error Constructors
func NewValidationError(message string) *AppError {
	return New(ValidationError, message)
}

// NewNotFoundError is also the cache-miss signal of every CacheProvider.
func NewNotFoundError(message string) *AppError {
	return New(NotFoundError, message)
}

// NewRegionNotFoundError reports the region name that could not be mapped.
func NewRegionNotFoundError(provider, name string) *AppError {
	return New(RegionNotFoundError, fmt.Sprintf("no %s region matches %q", provider, name))
}

func NewMalformedRecordError(message string) *AppError {
	return New(MalformedRecordError, message)
}

// Infrastructure Error Constructors
func NewDatabaseError(message string, cause error) *AppError {
	return Wrap(DatabaseError, message, cause)
}

func NewExternalAPIError(message string, cause error) *AppError {
	return Wrap(ExternalAPIError, message, cause)
}

func NewProviderUnavailableError(provider string, cause error) *AppError {
	return Wrap(ProviderUnavailableError, provider+" unavailable", cause)
}

// System/Configuration Error Constructors
func NewConfigurationError(message string, cause error) *AppError {
	return Wrap(ConfigurationError, message, cause)
}

func NewInternalError(message string, cause error) *AppError {
	return Wrap(InternalError, message, cause)
}

// TypeOf returns the type of the first AppError in the chain.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeUnknown
}

// Helper functions for error type checking
func IsNotFoundError(err error) bool {
	return TypeOf(err) == NotFoundError
}

func IsRegionNotFoundError(err error) bool {
	return TypeOf(err) == RegionNotFoundError
}

func IsMalformedRecordError(err error) bool {
	return TypeOf(err) == MalformedRecordError
}

func IsValidationError(err error) bool {
	return TypeOf(err) == ValidationError
}

func IsDatabaseError(err error) bool {
	return TypeOf(err) == DatabaseError
}

func IsExternalAPIError(err error) bool {
	return TypeOf(err) == ExternalAPIError
}

func IsProviderUnavailableError(err error) bool {
	return TypeOf(err) == ProviderUnavailableError
}

func IsConfigurationError(err error) bool {
	return TypeOf(err) == ConfigurationError
}
