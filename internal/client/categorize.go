package client

import (
	"context"
	"errors"
	"strings"

	"github.com/kjstillabower/weather-lookup/internal/circuitbreaker"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as metric labels (weatherApiErrorsTotal).
// ErrorCategoryCanceled is never used there; see weatherApiAbandonedTotal.
const (
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryCanceled         ErrorCategory = "canceled"
	ErrorCategoryNetwork          ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey    ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited      ErrorCategory = "rate_limited"
	ErrorCategoryUpstream         ErrorCategory = "upstream_status"
	ErrorCategoryCircuitOpen      ErrorCategory = "circuit_open"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// sentinelCategories is checked in order; the first match wins. Canceled
// precedes DeadlineExceeded because a superseded call may carry both.
var sentinelCategories = []struct {
	err      error
	category ErrorCategory
}{
	{context.Canceled, ErrorCategoryCanceled},
	{context.DeadlineExceeded, ErrorCategoryTimeout},
	{circuitbreaker.ErrOpen, ErrorCategoryCircuitOpen},
	{ErrInvalidAPIKey, ErrorCategoryInvalidAPIKey},
	{ErrLocationNotFound, ErrorCategoryLocationNotFound},
	{ErrRateLimited, ErrorCategoryRateLimited},
	{ErrUpstreamFailure, ErrorCategoryUpstream},
}

// CategorizeError maps a transport error to a stable ErrorCategory. Errors
// that match no sentinel fall back to their message.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	for _, sc := range sentinelCategories {
		if errors.Is(err, sc.err) {
			return sc.category
		}
	}

	switch msg := err.Error(); {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return ErrorCategoryTimeout
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection"):
		return ErrorCategoryNetwork
	}
	return ErrorCategoryUnknown
}

// Abandoned reports whether err only means the caller gave up on the call,
// as happens when a newer lookup supersedes it.
func Abandoned(err error) bool {
	return CategorizeError(err) == ErrorCategoryCanceled
}
