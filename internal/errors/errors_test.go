package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ValidationError("bad").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NotFoundError("missing").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NoDataError("empty").HTTPStatus())
	assert.Equal(t, http.StatusTooManyRequests, RateLimitedError("slow down").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, InternalError("boom", nil).HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, ExternalError("upstream", nil).HTTPStatus())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := InternalError("wrapper", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "root cause")
}

func TestWithContext(t *testing.T) {
	err := NotFoundError("election not found").WithContext("election_id", "e1")
	resp := err.ToResponse()

	assert.Equal(t, "election not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.Equal(t, "e1", resp.Context["election_id"])
}

func TestToResponseHidesCause(t *testing.T) {
	resp := InternalError("internal server error", errors.New("mongo: secret details")).ToResponse()
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, fmt.Sprintf("%+v", resp), "secret")
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	structured := ValidationError("nope")
	assert.Same(t, structured, AsStructuredError(structured))

	wrapped := fmt.Errorf("outer: %w", structured)
	assert.Same(t, structured, AsStructuredError(wrapped))

	plain := AsStructuredError(errors.New("boom"))
	require.NotNil(t, plain)
	assert.Equal(t, TypeInternal, plain.Type)
}
