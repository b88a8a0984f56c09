// Package otp wraps time-based one-time passwords (RFC 6238) for the
// second-factor login flow: mint a secret plus provisioning URI for an
// authenticator app, then check the codes it produces.
package otp
