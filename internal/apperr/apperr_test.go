package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("submit: %w", Invalid("Email", "is required"))
	assert.ErrorIs(t, err, ErrValidation)

	var fe *FieldError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "Email", fe.Field)

	err = fmt.Errorf("register: %w", &CapacityError{Reason: "EventCapacityExceeded", Message: "event is full"})
	assert.ErrorIs(t, err, ErrCapacity)
	assert.NotErrorIs(t, err, ErrValidation)
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage("get event", cause)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "get event: connection refused", err.Error())
	assert.Nil(t, Storage("noop", nil))
}
