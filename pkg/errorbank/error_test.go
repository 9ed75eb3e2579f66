package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   codes.Code
	}{
		{BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{Unauthorized("who"), http.StatusUnauthorized, codes.Unauthenticated},
		{Forbidden("no"), http.StatusForbidden, codes.PermissionDenied},
		{NotFound("missing"), http.StatusNotFound, codes.NotFound},
		{Conflict("dup"), http.StatusConflict, codes.AlreadyExists},
		{Unprocessable("nope"), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{Unavailable("down"), http.StatusServiceUnavailable, codes.Unavailable},
		{Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), string(tc.err.Kind()))
		assert.Equal(t, tc.code, tc.err.GRPCCode(), string(tc.err.Kind()))
	}
}

func TestFromPreservesAppError(t *testing.T) {
	orig := NotFound("order not found", WithDetail("id", 42))
	wrapped := fmt.Errorf("handler: %w", orig)

	got := From(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindNotFound, got.Kind())
	assert.Equal(t, int(42), got.Details()["id"].(int))
}

func TestFromWrapsUnknownError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	got := From(cause)
	require.NotNil(t, got)
	assert.Equal(t, KindInternal, got.Kind())
	assert.ErrorIs(t, got, cause)
}

func TestWithCauseUnwrap(t *testing.T) {
	cause := errors.New("root")
	err := Unavailable("customer service unreachable", WithCause(cause))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "root")
}
