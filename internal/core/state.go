package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Mode is the submission tab a session is on
type Mode string

const (
	ModeText Mode = "text"
	ModeFile Mode = "file"
)

// ParseMode parses a mode name, defaulting to text
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeText, "":
		return ModeText, nil
	case ModeFile:
		return ModeFile, nil
	default:
		return ModeText, fmt.Errorf("unknown mode %q", s)
	}
}

// Failure is a stored, display-ready submission failure
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
}

// FailureFromError converts any submission error into a Failure
func FailureFromError(err error) Failure {
	described := Describe(err)
	return Failure{
		Kind:    KindOf(err),
		Message: described.Message,
		Detail:  described.Detail,
	}
}

// SubmissionState is the current slot of one session. It is a value: every
// transition returns a new state and leaves the receiver untouched.
type SubmissionState struct {
	Seq     uint64                `json:"seq"`
	Mode    Mode                  `json:"mode"`
	Loading bool                  `json:"loading"`
	Result  *ClassificationResult `json:"result,omitempty"`
	Failure *Failure              `json:"failure,omitempty"`
}

// NewSubmissionState returns the state of a fresh session
func NewSubmissionState() SubmissionState {
	return SubmissionState{Mode: ModeText}
}

// Begin starts a new submission and returns its sequence number.
// Any previous result or failure is cleared.
func (s SubmissionState) Begin() (SubmissionState, uint64) {
	s.Seq++
	s.Loading = true
	s.Result = nil
	s.Failure = nil
	return s, s.Seq
}

// Resolve stores the result of submission seq. A superseded submission leaves
// the state unchanged and reports false.
func (s SubmissionState) Resolve(seq uint64, result *ClassificationResult) (SubmissionState, bool) {
	if seq != s.Seq {
		return s, false
	}
	s.Loading = false
	s.Result = result
	s.Failure = nil
	return s, true
}

// Fail stores the failure of submission seq. A superseded submission leaves
// the state unchanged and reports false.
func (s SubmissionState) Fail(seq uint64, failure Failure) (SubmissionState, bool) {
	if seq != s.Seq {
		return s, false
	}
	s.Loading = false
	s.Result = nil
	s.Failure = &failure
	return s, true
}

// Reject records a submission refused before it reached the network. It
// supersedes any submission still in flight.
func (s SubmissionState) Reject(failure Failure) SubmissionState {
	s.Seq++
	s.Loading = false
	s.Result = nil
	s.Failure = &failure
	return s
}

// SwitchMode moves the session to another tab. It clears the slot and
// supersedes any submission still in flight.
func (s SubmissionState) SwitchMode(mode Mode) SubmissionState {
	s.Seq++
	s.Mode = mode
	s.Loading = false
	s.Result = nil
	s.Failure = nil
	return s
}

// ErrSubmissionInFlight is returned when a session already has a submission loading
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// Tracker applies submission transitions to a session store
type Tracker struct {
	store  SessionStore
	logger *zap.Logger
}

// NewTracker creates a new submission tracker
func NewTracker(store SessionStore, logger *zap.Logger) *Tracker {
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// State returns the current state of a session, or a fresh one
func (t *Tracker) State(ctx context.Context, sessionID string) (SubmissionState, error) {
	state, err := t.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return NewSubmissionState(), nil
		}
		return SubmissionState{}, fmt.Errorf("failed to load session: %w", err)
	}
	return *state, nil
}

// SwitchMode moves a session to another tab
func (t *Tracker) SwitchMode(ctx context.Context, sessionID string, mode Mode) (SubmissionState, error) {
	return t.store.Update(ctx, sessionID, func(s SubmissionState) SubmissionState {
		return s.SwitchMode(mode)
	})
}

// Reject records a validation failure for a session
func (t *Tracker) Reject(ctx context.Context, sessionID string, err error) (SubmissionState, error) {
	return t.store.Update(ctx, sessionID, func(s SubmissionState) SubmissionState {
		return s.Reject(FailureFromError(err))
	})
}

// Submit runs one classification for a session. It returns
// ErrSubmissionInFlight without classifying while another submission of the
// session is loading. The outcome is stored only if no tab switch or
// rejected submission happened while it was in flight.
func (t *Tracker) Submit(
	ctx context.Context,
	sessionID string,
	classify func(ctx context.Context) (*ClassificationResult, error),
) (SubmissionState, error) {
	var seq uint64
	inFlight := false
	current, err := t.store.Update(ctx, sessionID, func(s SubmissionState) SubmissionState {
		if s.Loading {
			inFlight = true
			return s
		}
		inFlight = false
		s, seq = s.Begin()
		return s
	})
	if err != nil {
		return SubmissionState{}, fmt.Errorf("failed to begin submission: %w", err)
	}
	if inFlight {
		t.logger.Debug("Refused submission while another is in flight",
			zap.String("session", sessionID),
			zap.Uint64("seq", current.Seq))
		return current, ErrSubmissionInFlight
	}

	result, classifyErr := classify(ctx)

	// The caller may have gone away; the outcome is still recorded for the session
	applied := false
	state, err := t.store.Update(context.WithoutCancel(ctx), sessionID, func(s SubmissionState) SubmissionState {
		if classifyErr != nil {
			s, applied = s.Fail(seq, FailureFromError(classifyErr))
		} else {
			s, applied = s.Resolve(seq, result)
		}
		return s
	})
	if err != nil {
		return SubmissionState{}, fmt.Errorf("failed to complete submission: %w", err)
	}

	if !applied {
		t.logger.Debug("Discarded superseded submission",
			zap.String("session", sessionID),
			zap.Uint64("seq", seq),
			zap.Uint64("latest_seq", state.Seq))
	}

	return state, nil
}
