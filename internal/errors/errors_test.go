package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	t.Run("wrapped error keeps its kind", func(t *testing.T) {
		err := fmt.Errorf("query: %w", New(TimedOut, "statement timed out after 5s"))

		assert.True(t, IsTimeout(err))
		assert.False(t, IsAuth(err))
		assert.True(t, stderrors.Is(err, ErrTimeout))
		assert.False(t, stderrors.Is(err, ErrExecution))
	})

	t.Run("plain error has no kind", func(t *testing.T) {
		assert.Equal(t, Kind(""), KindOf(stderrors.New("boom")))
	})

	t.Run("unwrap exposes the cause", func(t *testing.T) {
		cause := stderrors.New("connection reset")
		err := Wrap(AuthFailed, "token refresh request failed", cause)

		assert.True(t, stderrors.Is(err, cause))
		assert.True(t, IsAuth(err))
	})
}

func TestErrorString(t *testing.T) {
	err := &E{Kind: ExecutionFailed, Message: "statement submission failed", StatusCode: 422, Code: "002003"}
	assert.Equal(t, "execution_failed: statement submission failed (status 422) [code 002003]", err.Error())

	wrapped := Wrap(AuthFailed, "token refresh request failed", stderrors.New("eof"))
	assert.Equal(t, "auth_failed: token refresh request failed: eof", wrapped.Error())
}
