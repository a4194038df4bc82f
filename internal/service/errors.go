package service

import "errors"

var (
	// ErrInvalidAccount is returned for a malformed or empty account identity
	ErrInvalidAccount = errors.New("invalid account identity")

	// ErrInvalidGrant is returned for a grant request with a non-positive duration
	ErrInvalidGrant = errors.New("invalid grant duration")

	// ErrInvalidEvent is returned for a provider event missing its transaction id or account
	ErrInvalidEvent = errors.New("invalid provider event")

	// ErrInvalidCredentials is returned when token validation fails
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrChannelThrottled is returned when the messaging channel is still
	// throttling after the single allowed retry
	ErrChannelThrottled = errors.New("messaging channel throttled")
)
