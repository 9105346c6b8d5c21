package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoActiveQuestion is returned when an answer arrives after the last
	// question was answered.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrSessionFinished is returned once a session's summary was produced
	// and its questions released.
	ErrSessionFinished = errors.New("session finished")
	// ErrNotFinished is returned when a summary is requested mid-quiz.
	ErrNotFinished = errors.New("session not finished")
	// ErrCollaborator matches every *CollaboratorError.
	ErrCollaborator = errors.New("collaborator failure")
)

// CollaboratorError wraps a failed grading, synthesis, hint, rewrite or
// summary call. The turn that hit it left the session unchanged.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaborator
}

func collaboratorErr(op string, err error) error {
	return &CollaboratorError{Op: op, Err: err}
}
