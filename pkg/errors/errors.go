package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

// Per-domain rejections (classification, extraction, guard outcomes) travel
// as pipeline diagnostics, not errors; only failures raised at call
// boundaries carry an ErrorType.
const (
	// ErrorTypeResolution represents URL resolution failures
	ErrorTypeResolution ErrorType = "resolution"
	// ErrorTypeTransport represents fetch/network failures
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeValidation represents guard rejections
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// DiscoveryError represents a discovery-specific error
type DiscoveryError struct {
	Type    ErrorType
	Domain  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Domain, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Domain, e.Message)
}

// Unwrap returns the underlying error
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *DiscoveryError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTransport, ErrorTypeResolution:
		return true
	default:
		return false
	}
}

// New creates a new DiscoveryError
func New(errType ErrorType, domain, message string, err error) *DiscoveryError {
	return &DiscoveryError{
		Type:    errType,
		Domain:  domain,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewResolution creates a new resolution error
func NewResolution(domain, message string, err error) *DiscoveryError {
	return New(ErrorTypeResolution, domain, message, err)
}

// NewTransport creates a new transport error
func NewTransport(domain, message string, err error) *DiscoveryError {
	return New(ErrorTypeTransport, domain, message, err)
}

// NewValidation creates a new validation error
func NewValidation(domain, message string) *DiscoveryError {
	return New(ErrorTypeValidation, domain, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *DiscoveryError {
	return New(ErrorTypeConfiguration, "", message, err)
}
