package domain

import "errors"

var (
	// ErrConfiguration aborts a run before any fetch happens.
	ErrConfiguration = errors.New("configuration error")
	// ErrRender means the digest artifact could not be produced or written.
	ErrRender = errors.New("render failure")
	// ErrAdapter marks a failed source fetch. It is recorded, never returned from a run.
	ErrAdapter = errors.New("adapter failure")
	// ErrAdapterTimeout marks an adapter that exceeded its fetch deadline.
	ErrAdapterTimeout = errors.New("adapter timed out")
)
