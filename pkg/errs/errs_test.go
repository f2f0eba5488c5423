package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Business("already finalized"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{NotFound("offer"), http.StatusNotFound},
		{Conflict("duplicate"), http.StatusConflict},
		{Internal(errors.New("db down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "error: %v", tt.err)
	}
}

func TestWrappedErrorsKeepKind(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Conflict("duplicate application"))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	internal := Internal(errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	msg := PublicMessage(internal)
	assert.NotContains(t, msg, "10.0.0.5")

	visible := NotFound("offer")
	assert.Contains(t, PublicMessage(visible), "offer")
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("duplicate entry")
	err := Wrap(ErrConflict, "application exists", cause)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, cause))
}
