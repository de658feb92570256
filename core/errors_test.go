package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainErrorClassification(t *testing.T) {
	cause := errors.New("conn reset")

	tests := []struct {
		name        string
		err         error
		invalid     bool
		storage     bool
		notFound    bool
		unavailable bool
	}{
		{"invalid input", InvalidInput(cause), true, false, false, false},
		{"storage failure", StorageFailure("places_by_ids", cause), false, true, false, false},
		{"wrapped storage failure", fmt.Errorf("recall.resolve: %w", StorageFailure("places_by_ids", cause)), false, true, false, false},
		{"store not found", ErrStoreNotFound, false, false, true, false},
		{"unavailable", WrapDomainError(ModuleService, ErrorCodeUnavailable, "down", cause), false, false, false, true},
		{"plain error", cause, false, false, false, false},
		{"nil", nil, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalidInput(tt.err); got != tt.invalid {
				t.Errorf("IsInvalidInput = %v", got)
			}
			if got := IsStorageFailure(tt.err); got != tt.storage {
				t.Errorf("IsStorageFailure = %v", got)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound = %v", got)
			}
			if got := IsUnavailable(tt.err); got != tt.unavailable {
				t.Errorf("IsUnavailable = %v", got)
			}
		})
	}
}

func TestDomainError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("conn reset")
	err := fmt.Errorf("wrap: %w", StorageFailure("recent_reviews", cause))

	if !errors.Is(err, ErrStorage) {
		t.Error("errors.Is(err, ErrStorage) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if errors.Is(err, ErrInvalidInput) {
		t.Error("storage failure matched ErrInvalidInput")
	}
	if got := GetDomainError(err).Error(); got != "storage: recent_reviews: conn reset" {
		t.Errorf("Error() = %q", got)
	}
	if !IsStoreNotFound(fmt.Errorf("get: %w", ErrStoreNotFound)) {
		t.Error("IsStoreNotFound on wrapped error = false")
	}
}
