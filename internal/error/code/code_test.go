package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEveryCodeHasMessageAndStatus(t *testing.T) {
	for c := range codeMessageMap {
		_, ok := codeStatusMap[c]
		assert.True(t, ok, "code %d has no status", c)
	}
	for c := range codeStatusMap {
		_, ok := codeMessageMap[c]
		assert.True(t, ok, "code %d has no message", c)
	}
}

func TestGetStatus(t *testing.T) {
	assert.Equal(t, StatusConflict, GetStatus(ErrTransitionInProgress))
	assert.Equal(t, StatusNotFound, GetStatus(ErrPropertyNotFound))
	assert.Equal(t, StatusUnauthorized, GetStatus(ErrSessionNotFound))
	assert.Equal(t, StatusInternalServerError, GetStatus(999999))
	assert.Equal(t, "unknown error", GetMessage(999999))
}
