package authgate

import (
	stderrors "errors"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	TextCodeUnauthenticated     = "UNAUTHENTICATED"
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	TextCodeInsufficientRole    = "INSUFFICIENT_ROLE"
	TextCodeMissingConfig       = "MISSING_CONFIG"
)

// ErrInvalidCredentials is returned when a submitted username/secret pair
// does not match a stored credential record. Unknown usernames produce the
// same error so callers cannot probe for registered accounts.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated is returned when a guard requires an authenticated
// session and the request carries none.
var ErrUnauthenticated = errors.New("authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidToken is returned by strict verification when a token has a bad
// signature or has expired.
var ErrInvalidToken = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired refines ErrInvalidToken for tokens whose signature is
// intact but whose lifetime has elapsed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail to parse or whose
// signature does not verify.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidRefreshToken is returned by the refresh flow when the refresh
// token is absent from the request body, fails verification, or its subject
// does not match the presented access token.
var ErrInvalidRefreshToken = errors.New("invalid refresh token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientRole is returned when a populated identity does not hold
// any of the roles a route declares.
var ErrInsufficientRole = errors.New("insufficient role", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrMissingConfig is returned during bring-up when a signing secret or TTL
// is undefined. It is fatal at process start, never per-request.
var ErrMissingConfig = errors.New("missing auth configuration", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingConfig).
	WithCode(errors.CodeBadRequest)

// ErrSessionNotFound is returned by session stores for unknown or expired
// session ids.
var ErrSessionNotFound = errors.New("session not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrUnableToDecodeSession is returned when a stored session payload cannot
// be decoded back into an Identity.
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

func hasTextCode(err error, textCode string) bool {
	var richErr *errors.Error
	if !stderrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == textCode
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for tokens that failed to parse
func IsMalformedError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}
