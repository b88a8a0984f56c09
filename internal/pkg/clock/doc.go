// Package clock abstracts time.Now behind the Clocker interface.
// Expiry logic (codes, challenges, refresh tokens) depends on it so
// tests can drive a deterministic clock forward.
package clock
