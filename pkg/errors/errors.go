package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents network-related errors
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents HTML or JSON parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeEnrichment represents attribute inference errors
	ErrorTypeEnrichment ErrorType = "enrichment"
	// ErrorTypeSnapshot represents snapshot read/write errors
	ErrorTypeSnapshot ErrorType = "snapshot"
	// ErrorTypeCache represents cache-related errors
	ErrorTypeCache ErrorType = "cache"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// PipelineError represents a stage-specific error with its failure class
type PipelineError struct {
	Type    ErrorType
	Stage   string
	URL     string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.URL != "" && e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s (%s) - %v", e.Type, e.Stage, e.Message, e.URL, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Stage, e.Message, e.Err)
	}
	if e.URL != "" {
		return fmt.Sprintf("[%s] %s: %s (%s)", e.Type, e.Stage, e.Message, e.URL)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRecoverable returns true if the run can continue past the error.
// A recoverable error skips the current item; everything else ends
// the surrounding stage.
func (e *PipelineError) IsRecoverable() bool {
	switch e.Type {
	case ErrorTypeNetwork, ErrorTypeParsing, ErrorTypeEnrichment:
		return true
	default:
		return false
	}
}

// TypeOf reports the error type of err, or an empty string when err
// is not a PipelineError.
func TypeOf(err error) ErrorType {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Type
	}
	return ""
}

// IsRateLimited reports whether err is a rate-limit error
func IsRateLimited(err error) bool {
	return TypeOf(err) == ErrorTypeRateLimit
}

// New creates a new PipelineError
func New(errType ErrorType, stage, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Stage:   stage,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// WithURL attaches the subject URL to the error
func (e *PipelineError) WithURL(url string) *PipelineError {
	e.URL = url
	return e
}

// NewNetwork creates a new network error
func NewNetwork(stage, message string, err error) *PipelineError {
	return New(ErrorTypeNetwork, stage, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(stage, message string, err error) *PipelineError {
	return New(ErrorTypeParsing, stage, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(stage, retryAfter string) *PipelineError {
	message := "rate limited"
	if retryAfter != "" {
		message = fmt.Sprintf("rate limited; retry after %s", retryAfter)
	}
	return New(ErrorTypeRateLimit, stage, message, nil)
}

// NewEnrichment creates a new enrichment error
func NewEnrichment(stage, message string, err error) *PipelineError {
	return New(ErrorTypeEnrichment, stage, message, err)
}

// NewSnapshot creates a new snapshot error
func NewSnapshot(stage, message string, err error) *PipelineError {
	return New(ErrorTypeSnapshot, stage, message, err)
}

// NewCache creates a new cache error
func NewCache(stage, message string, err error) *PipelineError {
	return New(ErrorTypeCache, stage, message, err)
}

// NewPublisher creates a new publisher error
func NewPublisher(stage, message string, err error) *PipelineError {
	return New(ErrorTypePublisher, stage, message, err)
}

// NewValidation creates a new validation error
func NewValidation(stage, message string) *PipelineError {
	return New(ErrorTypeValidation, stage, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *PipelineError {
	return New(ErrorTypeConfiguration, "", message, err)
}
