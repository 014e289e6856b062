package custom_error

import (
	"fmt"
	"net/http"
)

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("code already registered: %s", e.Code)
}

type InvalidDateRangeError struct {
	Start string
	End   string
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range: end %s before start %s", e.End, e.Start)
}

type InvalidQuantityError struct {
	Quantity int
	Reason   string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: %s", e.Quantity, e.Reason)
}

// InsufficientAvailabilityError carries both sides of the failed
// reservation decision so callers can display them.
type InsufficientAvailabilityError struct {
	Requested int
	Available int
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("insufficient availability: requested %d, available %d", e.Requested, e.Available)
}

type OverReturnError struct {
	Requested int
	Prepared  int
	Returned  int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("over-return: %d requested, only %d prepared and %d already returned", e.Requested, e.Prepared, e.Returned)
}

type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

type ActiveAllocationsExistError struct {
	EquipmentID string
}

func (e *ActiveAllocationsExistError) Error() string {
	return fmt.Sprintf("equipment %s still has active allocations", e.EquipmentID)
}

type NoActiveAllocationsError struct {
	ProjectID string
}

func (e *NoActiveAllocationsError) Error() string {
	return fmt.Sprintf("project %s has no active allocations", e.ProjectID)
}

// BusyError signals lock contention; the caller may retry with backoff.
type BusyError struct {
	Resource string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("resource busy, retry later: %s", e.Resource)
}

// WrapDBError translates PostgreSQL error codes into typed errors.
func WrapDBError(message, code string) error {
	switch code {
	case "23505":
		return &DuplicateCodeError{Code: message}
	case "23503":
		return &NotFoundError{Resource: "referenced entity", ID: message}
	case "55P03":
		return &BusyError{Resource: message}
	default:
		return fmt.Errorf("uncategorized error occurred with code %s: %s", code, message)
	}
}

// StatusCode maps each error kind to its documented HTTP status so
// integrators can branch on statuses instead of parsing messages.
func StatusCode(err error) int {
	switch err.(type) {
	case *NotFoundError:
		return http.StatusNotFound
	case *InvalidDateRangeError, *InvalidQuantityError:
		return http.StatusBadRequest
	case *DuplicateCodeError, *InsufficientAvailabilityError, *OverReturnError,
		*InvalidTransitionError, *ActiveAllocationsExistError:
		return http.StatusConflict
	case *NoActiveAllocationsError:
		return http.StatusUnprocessableEntity
	case *BusyError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
