package tg

import "errors"

// Failure taxonomy surfaced to job status. Clients wrap platform errors so
// engines and observers can classify with errors.Is without knowing the
// transport.
var (
	// ErrConnection: a side is unreachable or not authenticated.
	ErrConnection = errors.New("connection failed")
	// ErrRateLimited: the platform throttled the request.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotFound: entity, user or message is missing.
	ErrNotFound = errors.New("not found")
	// ErrPermission: insufficient rights for the operation.
	ErrPermission = errors.New("permission denied")
)
