package directline_test

import (
	"testing"

	"github.com/brightloop-labs/directline-go/directline"
	"github.com/stretchr/testify/assert"
)

func TestStatusError_Retryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		retryable bool
	}{
		{200, false},
		{404, false},
		{429, false},
		{499, false},
		{500, true},
		{502, true},
		{599, true},
	}

	for _, tt := range tests {
		err := &directline.StatusError{Status: tt.status}
		assert.Equal(t, tt.retryable, err.Retryable(), "status %d", tt.status)
	}
}

func TestStatusError_Error(t *testing.T) {
	t.Parallel()

	err := &directline.StatusError{Status: 503, Reason: "Server returned 503"}
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "Server returned 503")
}

func TestUsageError_Sentinels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "startNewConversation() must be called before executeTurn().", directline.ErrNoConversation.Error())
	assert.Equal(t, "This executeTurn() function is obsoleted. Please use a new one.", directline.ErrObsoletedHandle.Error())
}
