// Package auth provides the pluggable authentication pipeline for the
// gigbuddy server.
//
// Authentication uses a chain-of-responsibility pattern: each strategy
// inspects the request credentials and reports Match (principal
// established), NoMatch (could not establish one), or Failed (internal
// error). The chain tries strategies in registration order and stops at
// the first Match; failures are logged but never reject the request on
// their own. Only the guard converts the absence of a principal into an
// error.
package auth
