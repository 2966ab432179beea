package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, ErrInternal.Message, err.Message)
}

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "registration not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrMalformedPayload))
	assert.Equal(t, "registration not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestInvalidNamesField(t *testing.T) {
	err := Invalid("leader.email", "leader email is required")
	assert.Equal(t, "leader.email", err.Field)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(sql.ErrConnDone, ErrUnavailable.Code, ErrUnavailable.Status, "store unreachable")
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Contains(t, err.Error(), "store unreachable")
}
