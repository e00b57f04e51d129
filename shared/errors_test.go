package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestServiceErrorCategoryAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	serviceErr := NewServiceError(ErrorCategoryTransport, "FETCH_FAILED", "fetch failed",
		"TestService", "TestOp", true, cause)

	if !IsCategory(serviceErr, ErrorCategoryTransport) {
		t.Error("expected transport category")
	}
	if IsCategory(serviceErr, ErrorCategoryParse) {
		t.Error("category must not match a different category")
	}
	if !errors.Is(serviceErr, cause) {
		t.Error("expected unwrap chain to reach the cause")
	}
}

func TestIsCategorySeesWrappedServiceError(t *testing.T) {
	inner := NewServiceError(ErrorCategoryNotFound, "PROFILE_NOT_FOUND", "missing",
		"Store", "Get", false, nil)
	wrapped := fmt.Errorf("loading recommendations: %w", inner)

	if !IsCategory(wrapped, ErrorCategoryNotFound) {
		t.Error("expected category to survive fmt.Errorf wrapping")
	}
}

func TestWrapErrorPreservesExistingServiceError(t *testing.T) {
	original := NewServiceError(ErrorCategoryValidation, "BAD_INPUT", "bad input",
		"Handler", "Parse", false, nil)

	rewrapped := WrapError(original, ErrorCategoryDatabase, "IGNORED", "Store", "Put", true)
	if rewrapped.Category != ErrorCategoryValidation {
		t.Errorf("category = %s, want the original validation category", rewrapped.Category)
	}
	if rewrapped.ServiceName != "Store" || rewrapped.Operation != "Put" {
		t.Error("expected service context to be updated")
	}
}

func TestIsRetryableErrorHeuristics(t *testing.T) {
	if !IsRetryableError(errors.New("dial tcp: i/o timeout")) {
		t.Error("timeout errors should be retryable")
	}
	if IsRetryableError(errors.New("syntax error at position 4")) {
		t.Error("syntax errors should not be retryable")
	}

	nonRetryable := NewServiceError(ErrorCategoryParse, "PARSE_FAILED", "timeout mentioned but not retryable",
		"Svc", "Op", false, nil)
	if IsRetryableError(nonRetryable) {
		t.Error("explicit retryable flag must win over message heuristics")
	}
}
