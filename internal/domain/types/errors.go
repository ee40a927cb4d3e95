package types

import "errors"

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityExists   = errors.New("activity already exists")
	ErrInvalidActivity  = errors.New("invalid activity")

	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionForbidden   = errors.New("session belongs to another rider")
	ErrNothingToSave      = errors.New("session has no pending activity")
	ErrPersistFailed      = errors.New("failed to persist activity")
	ErrNonMonotonicSample = errors.New("sample timestamp is not after the previous sample")
	ErrSourceInactive     = errors.New("position source has no active subscriber")
	ErrNotLiveSource      = errors.New("session does not accept pushed samples")
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrInvalidToken      = errors.New("invalid token")
	ErrNotFound          = errors.New("requested item not found")
)
