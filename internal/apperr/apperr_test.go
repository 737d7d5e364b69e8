package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Invalid("bad input"), fiber.StatusBadRequest},
		{Unauthenticated("who are you"), fiber.StatusUnauthorized},
		{Forbidden("not yours"), fiber.StatusForbidden},
		{NotFound("report"), fiber.StatusNotFound},
		{Conflict("already done"), fiber.StatusConflict},
		{EditWindowClosed("too late"), fiber.StatusConflict},
		{RateLimited("slow down"), fiber.StatusTooManyRequests},
		{Unavailable(errors.New("conn refused")), fiber.StatusServiceUnavailable},
		{Internal(errors.New("boom")), fiber.StatusInternalServerError},
		{errors.New("plain error"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), "error: %v", tc.err)
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFound("report")
	wrapped := fmt.Errorf("loading report: %w", inner)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))
}

func TestUnknownErrorsAreInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("untyped")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, KindStorageUnavailable, "storage temporarily unavailable")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "storage temporarily unavailable", err.Error())
}

func TestMessageFallsBackToKind(t *testing.T) {
	err := New(KindConflict, "")
	assert.Equal(t, "conflict", err.Error())
}
