package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Clone(ErrNoRooms, "no rooms for run"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNoRooms.Code, appErr.Code)
	assert.Equal(t, "no rooms for run", appErr.Message)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr.Unwrap(), "boom")
	assert.Nil(t, FromError(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", Clone(ErrCapacityConfirmation, "12 students, 10 seats"))
	assert.True(t, Is(err, ErrCapacityConfirmation))
	assert.False(t, Is(err, ErrGeometryConfirmation))
	assert.False(t, Is(nil, ErrCacheMiss))
}

func TestCloneDoesNotMutateSentinel(t *testing.T) {
	_ = Clone(ErrQuotaExceeded, "custom")
	assert.Equal(t, "cycle quota exceeded for this school", ErrQuotaExceeded.Message)
}

func TestWithDetailsLeavesSentinelUntouched(t *testing.T) {
	err := Clone(ErrQuotaExceeded, "").WithDetails(map[string]interface{}{"quota": 5})
	err = err.WithDetails(map[string]interface{}{"remaining": 0})

	assert.Equal(t, map[string]interface{}{"quota": 5, "remaining": 0}, err.Details)
	assert.Nil(t, ErrQuotaExceeded.Details)
	assert.Nil(t, Clone(err, "again").Details)
}
