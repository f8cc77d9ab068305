// Package auth provides user accounts and cookie based session
// authentication (signup, signin, signout) backed by JWT session tokens
// and a per user revocation counter.
//
// Session tokens:
//   - Tokens are HS256 JWTs carrying {uid, token_version, iat, exp}. A
//     token is honored for authenticated operations only while its
//     embedded token_version matches the user's stored counter, so
//     advancing the counter revokes every outstanding session at once.
//   - NewSessionMiddleware attaches the request identity without ever
//     rejecting a request; handlers decide what an unauthenticated
//     request means. Tokens older than the rotation threshold are
//     reissued in place with a bumped version.
//
// Password reset:
//   - InitializePasswordResetHandler mints a short lived random token,
//     stores it on the user and emails a reset link through a Mailer.
//     FinalizePasswordResetHandler consumes the token and installs the
//     new password hash.
//
// Roles:
//   - Users hold a role set drawn from client, itemEditor, admin and
//     superAdmin. Role administration and account deletion require a
//     superAdmin actor whose session survives a token version recheck.
//
// The social subpackage links external provider identities (Facebook,
// Google) to the same user records and opens sessions through the same
// token service.
package auth
