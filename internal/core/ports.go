package core

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned when a session has no stored state or it expired
var ErrSessionNotFound = errors.New("session not found")

// Classifier defines the interface for talking to the classification service
type Classifier interface {
	// ClassifyText submits a text for classification
	ClassifyText(ctx context.Context, text string) (*ClassificationResponse, error)

	// ClassifyFile submits a .txt or .pdf file for classification
	ClassifyFile(ctx context.Context, file *FileInput) (*ClassificationResponse, error)

	// CheckHealth returns the service health payload
	CheckHealth(ctx context.Context) (map[string]interface{}, error)

	// GetSystemInfo returns the service information payload
	GetSystemInfo(ctx context.Context) (map[string]interface{}, error)
}

// SessionStore defines the interface for keeping the current submission slot of a session
type SessionStore interface {
	// Load returns the stored state of a session
	Load(ctx context.Context, sessionID string) (*SubmissionState, error)

	// Update atomically replaces the state of a session with fn(current).
	// A missing session starts from NewSubmissionState.
	Update(ctx context.Context, sessionID string, fn func(SubmissionState) SubmissionState) (SubmissionState, error)

	// Delete removes a session
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions
	Cleanup(ctx context.Context) error
}
