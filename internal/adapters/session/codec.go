package session

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/mikey/email-classifier/internal/core"
)

func encodeState(state core.SubmissionState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (*core.SubmissionState, error) {
	var state core.SubmissionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session state: %w", err)
	}
	return &state, nil
}
