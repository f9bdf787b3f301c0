package domain

import "errors"

// Registration.
var (
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrLocalWriteFailed    = errors.New("credential write failed")
	ErrRemoteWriteFailed   = errors.New("profile write failed")
	// ErrInconsistentState means a credential is orphaned: the remote write
	// failed and so did its compensation. Never swallow it.
	ErrInconsistentState = errors.New("inconsistent identity state")
)

// Login.
var (
	ErrInvalidCredentials         = errors.New("invalid username or password")
	ErrProfileMissing             = errors.New("credential has no paired profile")
	ErrCredentialStoreUnavailable = errors.New("credential store unavailable")
)

// Stores and remote service.
var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrRemoteUnavailable  = errors.New("profile service unavailable")
	ErrRemoteRejected     = errors.New("profile service rejected request")
)

// Sessions.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionInvalid  = errors.New("session invalid")
)

var ErrAggregationFailed = errors.New("dashboard aggregation failed")
