package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ErrorClass represents the category of an LLM error for retry decisions.
type ErrorClass int

const (
	// ErrorClassTransient indicates a temporary error worth one more attempt.
	// Examples: rate limiting, upstream 5xx, network resets.
	ErrorClassTransient ErrorClass = iota

	// ErrorClassPermanent indicates a non-retryable error.
	// Examples: bad API key, unknown model, malformed request.
	ErrorClassPermanent
)

// String returns the string representation of ErrorClass.
func (e ErrorClass) String() string {
	switch e {
	case ErrorClassTransient:
		return "transient"
	case ErrorClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with its classification and retry guidance.
type ClassifiedError struct {
	Class      ErrorClass
	Original   error
	RetryAfter time.Duration
}

func (c *ClassifiedError) Error() string {
	if c.Original == nil {
		return fmt.Sprintf("classified error: class=%s", c.Class)
	}
	return fmt.Sprintf("%s: %v", c.Class, c.Original)
}

func (c *ClassifiedError) Unwrap() error {
	return c.Original
}

// IsTransient returns true if the error is temporary.
func (c *ClassifiedError) IsTransient() bool {
	return c.Class == ErrorClassTransient
}

// ClassifyError classifies an error returned by a chat completion call.
// Only LLM calls are classified; tool calls, which may write to the calendar, are never retried.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return &ClassifiedError{Class: ErrorClassPermanent, Original: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(err, apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(err, reqErr.HTTPStatusCode)
	}

	if isNetworkError(err) || isTimeoutError(err) {
		return &ClassifiedError{Class: ErrorClassTransient, Original: err, RetryAfter: time.Second}
	}

	// Unknown errors are not retried.
	return &ClassifiedError{Class: ErrorClassPermanent, Original: err}
}

func classifyStatus(err error, status int) *ClassifiedError {
	switch status {
	case http.StatusTooManyRequests:
		return &ClassifiedError{Class: ErrorClassTransient, Original: err, RetryAfter: 2 * time.Second}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &ClassifiedError{Class: ErrorClassTransient, Original: err, RetryAfter: time.Second}
	default:
		return &ClassifiedError{Class: ErrorClassPermanent, Original: err}
	}
}

func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"temporary failure",
		"unexpected eof",
	} {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "i/o timeout") || strings.Contains(errMsg, "timed out")
}

// ShouldRetry returns true if the error warrants another attempt.
func ShouldRetry(err error) bool {
	classified := ClassifyError(err)
	return classified != nil && classified.IsTransient()
}

// GetRetryDelay returns the suggested delay before retry, or 0 if not retryable.
func GetRetryDelay(err error) time.Duration {
	classified := ClassifyError(err)
	if classified != nil && classified.IsTransient() {
		return classified.RetryAfter
	}
	return 0
}
