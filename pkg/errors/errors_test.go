package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YanGranat/ukhvat-notes-sub000/pkg/code"
)

func TestFromErrorPassthrough(t *testing.T) {
	orig := NewAppError(code.ErrorNoteNotFound, nil).WithTraceID("run-1")

	got := FromError(orig)
	assert.Same(t, orig, got)
	assert.Equal(t, "run-1", got.TraceID)
}

func TestFromErrorCode(t *testing.T) {
	got := FromError(code.ErrorVersionNotFound)
	require.NotNil(t, got)
	assert.Equal(t, code.ErrorVersionNotFound.Code(), got.Code)
	assert.Equal(t, code.ErrorVersionNotFound.Msg(), got.Message)
}

func TestFromErrorWrappedCode(t *testing.T) {
	wrapped := fmt.Errorf("cleanup sweep: %w", code.ErrorDBQuery)

	got := FromError(wrapped)
	assert.Equal(t, code.ErrorDBQuery.Code(), got.Code)
}

func TestFromErrorPlain(t *testing.T) {
	plain := fmt.Errorf("disk full")

	got := FromError(plain)
	assert.Equal(t, code.ErrorServerInternal.Code(), got.Code)
	assert.Contains(t, got.Details, "disk full")
	assert.ErrorIs(t, got, plain)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("no space left on device")
	appErr := NewAppErrorWithMessage(code.ErrorContentWrite.Code(), "version content write failed", cause)

	assert.ErrorIs(t, appErr, cause)
	assert.True(t, IsAppError(appErr))
	assert.Same(t, appErr, GetAppError(fmt.Errorf("outer: %w", appErr)))
	assert.Nil(t, GetAppError(cause))
}
