package progress

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := newInvalidArgument(7, "card id is not in the catalog")
	assert.Equal(t, "INVALID_ARGUMENT: card id is not in the catalog (card=7)", err.Error())

	cause := errors.New("disk full")
	werr := newWriteError(cause)
	assert.Equal(t, "PERSIST_WRITE: progress may not persist: disk full", werr.Error())
	assert.ErrorIs(t, werr, cause)
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("study: %w", newSnapshotError(errors.New("bad json")))
	assert.Equal(t, ErrCodeSnapshotRead, CodeOf(err))
	assert.True(t, IsRecoverable(err))
	assert.False(t, IsCatalogError(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("x")))
	assert.False(t, IsRecoverable(ErrClosed))
	assert.False(t, IsInvalidArgument(nil))
}
