package kernelerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesSentinelForIs(t *testing.T) {
	err := Wrap(ErrNotFound, "object \"meter1\"")
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrInvalidArgument))
	assert.Contains(t, err.Error(), "meter1")
}

func TestWrapfFormatsContext(t *testing.T) {
	err := Wrapf(ErrOutOfRange, "value %d exceeds %d", 42, 10)
	assert.True(t, Is(err, ErrOutOfRange))
	assert.Contains(t, err.Error(), "42 exceeds 10")
}
