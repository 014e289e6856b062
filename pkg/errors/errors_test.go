package custom_error

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapDBError(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"unique violation", "23505", &DuplicateCodeError{}},
		{"foreign key violation", "23503", &NotFoundError{}},
		{"lock timeout", "55P03", &BusyError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapDBError("details", tt.code)
			assert.IsType(t, tt.want, err)
		})
	}

	err := WrapDBError("details", "42601")
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &NotFoundError{Resource: "equipment", ID: "x"}, http.StatusNotFound},
		{"duplicate code", &DuplicateCodeError{Code: "EQ-1"}, http.StatusConflict},
		{"invalid date range", &InvalidDateRangeError{}, http.StatusBadRequest},
		{"invalid quantity", &InvalidQuantityError{Quantity: -1}, http.StatusBadRequest},
		{"insufficient availability", &InsufficientAvailabilityError{Requested: 1}, http.StatusConflict},
		{"over return", &OverReturnError{}, http.StatusConflict},
		{"invalid transition", &InvalidTransitionError{}, http.StatusConflict},
		{"active allocations exist", &ActiveAllocationsExistError{}, http.StatusConflict},
		{"no active allocations", &NoActiveAllocationsError{}, http.StatusUnprocessableEntity},
		{"busy", &BusyError{}, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}
