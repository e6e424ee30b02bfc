package app

import "errors"

// Closed error set for the service layer. Handlers map these to response
// codes with errors.Is; anything unlisted is reported to clients as a
// generic internal failure.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrEmailTaken      = errors.New("email already exists")
	ErrUnauthorized    = errors.New("invalid credentials or token")
	ErrNoActiveCorpus  = errors.New("no document uploaded")
	ErrContentTooShort = errors.New("content too short (less than 50 characters)")
	// ErrUpstream wraps embedding/index/generation collaborator failures,
	// including timeouts. The wrapped detail is for server logs only and
	// must never reach a client response.
	ErrUpstream = errors.New("upstream service failure")
)
