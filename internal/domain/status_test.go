package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingStatusValid(t *testing.T) {
	for _, s := range []ProcessingStatus{
		StatusPending, StatusUploading, StatusUploaded, StatusTranscribing,
		StatusTranscribed, StatusEnriching, StatusCompleted, StatusFailed,
	} {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}

	assert.False(t, ProcessingStatus("").Valid())
	assert.False(t, ProcessingStatus("DONE").Valid())
}

func TestProcessingStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusUploaded.Terminal())
	assert.False(t, StatusEnriching.Terminal())
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    ProcessingStatus
		to      ProcessingStatus
		allowed bool
	}{
		{StatusPending, StatusUploading, true},
		{StatusPending, StatusUploaded, true},
		{StatusPending, StatusTranscribing, false},
		{StatusUploading, StatusUploaded, true},
		{StatusUploading, StatusFailed, true},
		{StatusUploaded, StatusTranscribing, true},
		{StatusUploaded, StatusEnriching, false},
		{StatusUploaded, StatusFailed, false},
		{StatusTranscribing, StatusTranscribed, true},
		{StatusTranscribing, StatusFailed, true},
		{StatusTranscribing, StatusEnriching, false},
		{StatusTranscribed, StatusEnriching, true},
		{StatusTranscribed, StatusFailed, true},
		{StatusEnriching, StatusCompleted, true},
		{StatusEnriching, StatusFailed, true},
		{StatusEnriching, StatusTranscribing, false},
		{StatusCompleted, StatusUploaded, true},
		{StatusCompleted, StatusEnriching, false},
		{StatusFailed, StatusUploaded, true},
		{StatusFailed, StatusTranscribing, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTransitionTo(t *testing.T) {
	entry := &LogEntry{ID: "e1", ProcessingStatus: StatusUploaded}

	require.NoError(t, entry.TransitionTo(StatusTranscribing))
	assert.Equal(t, StatusTranscribing, entry.ProcessingStatus)

	err := entry.TransitionTo(StatusCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))
	assert.Equal(t, StatusTranscribing, entry.ProcessingStatus, "failed transition must not change the status")
}

func TestReprocessingFromTerminalStates(t *testing.T) {
	for _, from := range []ProcessingStatus{StatusCompleted, StatusFailed} {
		entry := &LogEntry{ID: "e1", ProcessingStatus: from}
		require.NoError(t, entry.TransitionTo(StatusUploaded))
		require.NoError(t, entry.TransitionTo(StatusTranscribing))
	}
}
