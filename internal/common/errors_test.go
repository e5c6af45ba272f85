package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	detailed := ErrNotFound.WithDetails("Draft profile not found.")

	assert.Nil(t, ErrNotFound.Details)
	assert.Equal(t, "Draft profile not found.", detailed.Details)
	assert.Equal(t, http.StatusNotFound, detailed.StatusCode)
}

func TestAPIError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrBadState.WithMessage("Profile is not in draft status"))

	assert.True(t, errors.Is(err, ErrBadState))
	assert.False(t, errors.Is(err, ErrBadRequest))

	apiErr, ok := IsAPIError(err)
	assert.True(t, ok)
	assert.Equal(t, "Profile is not in draft status", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestIsUniqueViolation_NonDBError(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(21, 2, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	empty := NewPagination(0, 1, 10)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
