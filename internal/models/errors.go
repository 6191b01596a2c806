package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidURL          = errors.New("invalid url")
	ErrVideoUnavailable    = errors.New("video unavailable")
	ErrNoVideosResolved    = errors.New("no videos resolved")
	ErrScoring             = errors.New("scoring failed")
	ErrCollaboratorTimeout = errors.New("collaborator timeout")
	ErrCanceled            = errors.New("request canceled")
)

// ErrorKind is the user-facing category of an error.
type ErrorKind string

const (
	KindInvalidRequest      ErrorKind = "InvalidRequest"
	KindInvalidURL          ErrorKind = "InvalidUrl"
	KindVideoUnavailable    ErrorKind = "VideoUnavailable"
	KindNoVideosResolved    ErrorKind = "NoVideosResolved"
	KindScoringError        ErrorKind = "ScoringError"
	KindCollaboratorTimeout ErrorKind = "CollaboratorTimeout"
	KindCanceled            ErrorKind = "Canceled"
	KindInternal            ErrorKind = "Internal"
)

var kindErrors = map[ErrorKind]error{
	KindInvalidRequest:      ErrInvalidRequest,
	KindInvalidURL:          ErrInvalidURL,
	KindVideoUnavailable:    ErrVideoUnavailable,
	KindNoVideosResolved:    ErrNoVideosResolved,
	KindScoringError:        ErrScoring,
	KindCollaboratorTimeout: ErrCollaboratorTimeout,
	KindCanceled:            ErrCanceled,
}

// KindOf maps an error onto the taxonomy. Unknown errors are Internal.
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	// Timeout first: a timed out call is also wrapped in its failure kind.
	for _, k := range []ErrorKind{
		KindCollaboratorTimeout, KindCanceled, KindInvalidRequest, KindInvalidURL,
		KindVideoUnavailable, KindNoVideosResolved, KindScoringError,
	} {
		if errors.Is(err, kindErrors[k]) {
			return k
		}
	}
	return KindInternal
}

// RequestError is a fatal, request-level failure returned by Analyze.
type RequestError struct {
	Kind    ErrorKind
	Message string
}

func NewRequestError(kind ErrorKind, format string, args ...any) *RequestError {
	return &RequestError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RequestError) Unwrap() error {
	return kindErrors[e.Kind]
}
