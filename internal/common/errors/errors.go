// Package errors provides standardized error handling for the forecasting service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Structural input errors, rejected before any computation runs.
	ErrCodeStructuralInputInvalid ErrorCode = "STRUCTURAL_INPUT_INVALID"
	ErrCodeUnknownPlatform        ErrorCode = "UNKNOWN_PLATFORM"
	ErrCodeAllocationInfeasible   ErrorCode = "ALLOCATION_INFEASIBLE"

	// Benchmark data errors (startup only).
	ErrCodeBenchmarkLoadFailed      ErrorCode = "BENCHMARK_LOAD_FAILED"
	ErrCodeBenchmarkCoverageInvalid ErrorCode = "BENCHMARK_COVERAGE_INVALID"

	// Narrative collaborator errors (always swallowed into fallback text).
	ErrCodeNarrativeTimeout ErrorCode = "NARRATIVE_TIMEOUT"
	ErrCodeNarrativeFailed  ErrorCode = "NARRATIVE_FAILED"

	// Report access errors.
	ErrCodeReportNotFound ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeReportStore    ErrorCode = "REPORT_STORE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// AsStandard returns err as a StandardError, wrapping unknown errors
// under INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStructuralInputError creates a non-retryable brief validation error.
func NewStructuralInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStructuralInputInvalid,
		Message:   "Campaign brief failed structural validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownPlatformError creates a non-retryable error for a platform id that
// exists in no benchmark table. Unlike the industry/season lookups there is no
// default fallback here: an unknown platform is a programmer error.
func NewUnknownPlatformError(platformID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownPlatform,
		Message:   "Platform has no benchmark entry",
		Details:   fmt.Sprintf("platformId: %s", platformID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAllocationInfeasibleError creates a non-retryable error carrying the exact
// shortfall so callers can suggest a minimum viable budget.
func NewAllocationInfeasibleError(budget, floorSum float64) *StandardError {
	return &StandardError{
		Code:    ErrCodeAllocationInfeasible,
		Message: "Sum of per-platform minimum spends exceeds total budget",
		Details: fmt.Sprintf("budget: %.2f, required: %.2f", budget, floorSum),
		Metadata: map[string]interface{}{
			"shortfall":           floorSum - budget,
			"minimumViableBudget": floorSum,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBenchmarkLoadError creates a startup error for an unreadable benchmark file.
func NewBenchmarkLoadError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBenchmarkLoadFailed,
		Message:   "Benchmark tables could not be loaded",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBenchmarkCoverageError creates a startup error for tables missing
// required coverage (e.g. a missing default entry).
func NewBenchmarkCoverageError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBenchmarkCoverageInvalid,
		Message:   "Benchmark tables failed coverage validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNarrativeTimeoutError creates a retryable narrative collaborator timeout.
func NewNarrativeTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNarrativeTimeout,
		Message:   "Narrative generation timeout",
		Details:   "text-generation call exceeded its deadline",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNarrativeFailedError creates a retryable narrative collaborator error.
func NewNarrativeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNarrativeFailed,
		Message:   "Narrative generation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportNotFoundError creates a non-retryable lookup miss.
func NewReportNotFoundError(reportID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportNotFound,
		Message:   "Report not found",
		Details:   fmt.Sprintf("reportId: %s", reportID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportStoreError creates a retryable persistence error.
func NewReportStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportStore,
		Message:   "Report persistence failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to the HTTP status code surfaced by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeStructuralInputInvalid, ErrCodeUnknownPlatform:
		return http.StatusBadRequest
	case ErrCodeAllocationInfeasible:
		return http.StatusUnprocessableEntity
	case ErrCodeReportNotFound:
		return http.StatusNotFound
	case ErrCodeNarrativeTimeout, ErrCodeNarrativeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether err carries a retryable code.
func IsRetryable(err error) bool {
	return AsStandard(err).Retryable
}
