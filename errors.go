package account

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailInUse           = "account_email_in_use"
	TextCodeInvalidCreds         = "account_invalid_credentials"
	TextCodeEmailNotVerified     = "account_email_not_verified"
	TextCodeVerificationNotFound = "account_verification_not_found"
	TextCodeMissingEmail         = "account_missing_email"
	TextCodeAlreadyVerified      = "account_already_verified"
	TextCodeSessionRevoked       = "account_session_revoked"
	TextCodeSessionDecodeError   = "account_session_decode_error"
	TextCodeDataParseError       = "account_data_parse_error"
	TextCodeEmptyPassword        = "account_empty_password"
	TextCodeTokenExpired         = "account_token_expired"
	TextCodeTokenMalformed       = "account_token_malformed"
)

// ErrEmailInUse is returned when registration targets an existing email.
var ErrEmailInUse = errors.New("email in use", errors.CategoryConflict).
	WithTextCode(TextCodeEmailInUse).
	WithCode(errors.CodeConflict)

// ErrInvalidCredentials covers both an unknown email and a wrong password so
// callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("wrong email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrEmailNotVerified is returned on login when credentials match but the
// account has not confirmed its email.
var ErrEmailNotVerified = errors.New("email not verified", errors.CategoryAuth).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(errors.CodeUnauthorized)

// ErrVerificationNotFound is returned when no account holds the presented
// verification token. A consumed token lands here too, which is what makes
// tokens single-use.
var ErrVerificationNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeVerificationNotFound).
	WithCode(errors.CodeNotFound)

// ErrMissingEmail is returned when a resend request carries no email.
var ErrMissingEmail = errors.New("missing required field email", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingEmail).
	WithCode(errors.CodeBadRequest)

// ErrAlreadyVerified is returned when resending a verification link to an
// account that already passed verification.
var ErrAlreadyVerified = errors.New("verification has already been passed", errors.CategoryBadInput).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(errors.CodeBadRequest)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the hasher-level mismatch; the engine maps
// it to ErrInvalidCredentials before it reaches a caller.
var ErrMismatchedHashAndPassword = errors.New("the credentials provided are invalid", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrSessionRevoked is returned when a presented token no longer matches the
// stored session token (replaced by a later login, or cleared by logout).
var ErrSessionRevoked = errors.New("session is no longer active", errors.CategoryAuth).
	WithTextCode(TextCodeSessionRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired marks bearer tokens past their expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed marks bearer tokens that fail to parse or verify.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode claims from a validated token
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithTextCode(TextCodeDataParseError).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsDuplicateRecordError will check for unique constraint violations from
// the storage driver
func IsDuplicateRecordError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
