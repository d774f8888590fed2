package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchAfterWrapping(t *testing.T) {
	err := fmt.Errorf("review r1: %w", ErrRequestAlreadyResolved)
	assert.True(t, stderrors.Is(err, ErrRequestAlreadyResolved))
	assert.False(t, stderrors.Is(err, ErrSessionReset), "same code, different message")
	assert.Equal(t, CodeFailedPrecondition, CodeOf(err))
}

func TestHasCodeWalksCauses(t *testing.T) {
	err := TransportFailure("POST /request/review/rejected/r1", ErrRequestAlreadyResolved)
	assert.True(t, HasCode(err, CodeTransportFailure))
	assert.True(t, HasCode(err, CodeFailedPrecondition))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestUnauthorizedWinsOverTransportFailure(t *testing.T) {
	err := TransportFailure("GET /user/feed", ErrSessionExpired)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsTransportFailure(err))

	assert.True(t, IsTransportFailure(TransportFailure("dial", stderrors.New("connection refused"))))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeInternal, "store message", stderrors.New("throttled"))
	assert.Equal(t, "store message: throttled", err.Error())
	assert.Equal(t, "user not found", ErrUserNotFound.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, CodeUnauthenticated.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeFailedPrecondition.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, CodePermissionDenied.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CodeUnknown.HTTPStatus())
}
