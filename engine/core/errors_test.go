package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesSentinels(t *testing.T) {
	oom := OutOfMemory("allocating %d bytes", 64)
	assert.True(t, errors.Is(oom, ErrOutOfMemory))
	assert.False(t, errors.Is(oom, ErrInvalidOperation))
	assert.Equal(t, CodeOutOfMemory, CodeOf(oom))
	assert.Contains(t, oom.Error(), "GL_OUT_OF_MEMORY")

	wrapped := fmt.Errorf("texture storage: %w", InvalidOperation("bad level"))
	assert.True(t, errors.Is(wrapped, ErrInvalidOperation))
	assert.Equal(t, CodeInvalidOperation, CodeOf(wrapped))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNoError, CodeOf(nil))
	assert.Equal(t, CodeOutOfMemory, CodeOf(fmt.Errorf("x: %w", ErrOutOfMemory)))
	assert.Equal(t, CodeInvalidOperation, CodeOf(errors.New("boom")))
}

func TestUnreachablePanics(t *testing.T) {
	assert.Panics(t, func() { Unreachable("static buffer resized to %d", 12) })
}
