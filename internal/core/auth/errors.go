package auth

import "errors"

var (
	// ErrTokenMalformed signals a token that cannot be parsed at all.
	ErrTokenMalformed = errors.New("auth: token malformed")
	// ErrTokenExpired signals a token past its embedded expiry.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenTypeMismatch signals a well-formed token signed under a
	// different type's configuration (e.g. a refresh token presented where
	// an access token is required).
	ErrTokenTypeMismatch = errors.New("auth: token type mismatch")
	// ErrAuthenticationFailed signals wrong credentials. Unknown identifier
	// and wrong password are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("auth: authentication failed")
	// ErrMethodNotAllowed signals an Authorization scheme this service
	// refuses to accept (HTTP basic auth).
	ErrMethodNotAllowed = errors.New("auth: method not allowed")
)
