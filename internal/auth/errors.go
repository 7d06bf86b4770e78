package auth

import "errors"

// Client-facing errors. Each maps to a 400 response with its message as the
// body; anything else coming out of the service is a server-side failure.
var (
	ErrMissingRegistration = errors.New("email or passwords are not provided")
	ErrPasswordMismatch    = errors.New("passwords don't match")
	ErrWeakPassword        = errors.New("password is too weak")
	ErrEmailTaken          = errors.New("email is already in use")
	ErrMissingCredentials  = errors.New("credentials are not provided")
	ErrInvalidCredentials  = errors.New("credentials are invalid")
	ErrMissingRefreshToken = errors.New("missing refresh token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrMissingAccessToken  = errors.New("missing access token")
	ErrInvalidAccessToken  = errors.New("invalid access token")
)

var clientErrors = []error{
	ErrMissingRegistration,
	ErrPasswordMismatch,
	ErrWeakPassword,
	ErrEmailTaken,
	ErrMissingCredentials,
	ErrInvalidCredentials,
	ErrMissingRefreshToken,
	ErrInvalidRefreshToken,
	ErrTokenRevoked,
	ErrMissingAccessToken,
	ErrInvalidAccessToken,
}

// IsClientError reports whether err belongs to the 4xx taxonomy above.
// Store-connectivity failures are deliberately excluded so they surface as
// generic server errors instead of being masked as bad input.
func IsClientError(err error) bool {
	for _, e := range clientErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
