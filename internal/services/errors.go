package services

import "fmt"

// Service errors
var (
	ErrInvalidRetention = &ServiceError{Message: "retention must be at least one hour"}
	ErrEmptyURL         = &ServiceError{Message: "display URL is empty"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidLimitError reports a page size outside the allowed range
type InvalidLimitError struct {
	Limit int
}

func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("limit must be between 1 and %d, got %d", MaxScanLimit, e.Limit)
}
