package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClonedErrorsMatchTemplate(t *testing.T) {
	err := fmt.Errorf("update tutor: %w", Clone(ErrBackendRejected, "tutor already reviewed"))

	assert.True(t, errors.Is(err, ErrBackendRejected))
	assert.False(t, errors.Is(err, ErrBackendUnavailable))
	assert.Equal(t, "tutor already reviewed", UserMessage(err))
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, ErrInternal.Status, appErr.Status)
	assert.Nil(t, FromError(nil))
	assert.Empty(t, UserMessage(nil))
}
