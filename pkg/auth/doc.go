// Package auth provides pluggable authentication for the bote gateway.
//
// Authentication uses a chain-of-responsibility pattern with
// three-outcome voting: each authenticator returns Yes (identity
// found), No (credentials invalid), or Abstain (can't handle). A
// configurable default decides when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// exchange engine. This protects the gateway's own API; the upstream
// credential is a separate concern handled by the config package.
package auth
