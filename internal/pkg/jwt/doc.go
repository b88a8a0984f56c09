// Package jwt issues and verifies the service's access tokens.
//
// It carries a typed Claims wrapper around the registered claims, an
// HS512 signer/verifier, and context helpers the auth middleware uses
// to hand claims down to use cases.
package jwt
