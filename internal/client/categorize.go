package client

import (
	"context"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for why an upstream call did not produce a reading.
// Used as the fallback reason in metrics and logs.
type ErrorCategory string

const (
	ErrorCategoryNoAPIKey         ErrorCategory = "no_api_key"
	ErrorCategoryCircuitOpen      ErrorCategory = "circuit_open"
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryCanceled         ErrorCategory = "canceled"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey    ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited      ErrorCategory = "rate_limited"
	ErrorCategoryUpstreamStatus   ErrorCategory = "upstream_status"
	ErrorCategoryContentType      ErrorCategory = "content_type"
	ErrorCategoryParsing          ErrorCategory = "parsing"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNoAPIKey):
		return ErrorCategoryNoAPIKey
	case errors.Is(err, ErrCircuitOpen):
		return ErrorCategoryCircuitOpen
	case errors.Is(err, context.Canceled):
		return ErrorCategoryCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryTimeout
	case errors.Is(err, ErrInvalidAPIKey):
		return ErrorCategoryInvalidAPIKey
	case errors.Is(err, ErrLocationNotFound):
		return ErrorCategoryLocationNotFound
	case errors.Is(err, ErrRateLimited):
		return ErrorCategoryRateLimited
	case errors.Is(err, ErrUpstreamFailure):
		return ErrorCategoryUpstreamStatus
	case errors.Is(err, ErrUnexpectedContentType):
		return ErrorCategoryContentType
	}

	errStr := err.Error()
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded") {
		return ErrorCategoryTimeout
	}
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") {
		return ErrorCategoryNetwork
	}
	if strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") {
		return ErrorCategoryParsing
	}
	return ErrorCategoryUnknown
}

// IsBreakerFailure reports whether err indicates an unhealthy provider.
// Unknown cities and callers hanging up say nothing about the provider and do not
// trip the breaker.
func IsBreakerFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrLocationNotFound) && !errors.Is(err, context.Canceled)
}
