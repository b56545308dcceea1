// Package account implements the account lifecycle for a small user service:
// registration, email verification, login/logout, and avatar management.
//
// Lifecycle:
//   - Accounts created through Register start unverified and carry a
//     single-use verification token. VerifyEmail consumes the token exactly
//     once; a second attempt with the same token fails because the token is
//     cleared on first use.
//   - Login issues a signed bearer token (24h by default) and persists it as
//     the account's session token. At most one session token is live per
//     account; a later login replaces the earlier one and Authenticate
//     rejects tokens that no longer match the stored value.
//
// Failures are rich errors from github.com/goliatone/go-errors: a closed set
// of categories (conflict, auth, not-found, bad-input, internal) with stable
// text codes, decoded uniformly at the HTTP boundary. Collaborators (hasher,
// token service, notifier, avatar processor, store) sit behind small
// interfaces so the engine can be exercised without infrastructure.
package account
