package federation

import "errors"

var (
	ErrNoEndpoints      = errors.New("no endpoints to dispatch to")
	ErrRemoteExecution  = errors.New("remote training failed")
	ErrMalformedResult  = errors.New("malformed training result")
	ErrQuorumNotReached = errors.New("quorum not reached")
	ErrInvalidRounds    = errors.New("round count must be positive")
	ErrInvalidQuorum    = errors.New("quorum exceeds endpoint count")
	ErrRunNotStarted    = errors.New("no run in progress")
)
