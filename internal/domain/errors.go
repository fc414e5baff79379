package domain

import "errors"

var (
	ErrLogEntryNotFound = errors.New("log entry not found")
	ErrMessageNotFound  = errors.New("entity changed message not found")
	ErrFolderNotFound   = errors.New("folder not found")
	ErrFileNotFound     = errors.New("file not found")

	ErrUnauthorized = errors.New("unauthorized access to resource")

	ErrInvalidStatusTransition = errors.New("invalid processing status transition")

	// ErrStatusConflict is returned by the conditional status update when the
	// entry is no longer in the expected status. The orchestrator treats it as
	// a lost claim race and aborts silently.
	ErrStatusConflict = errors.New("processing status changed concurrently")
)
