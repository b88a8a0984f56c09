// Package hash collects the one-way digests the service stores instead
// of secrets: argon2id for passwords, bcrypt for recovery codes and
// keyed HMAC-SHA256 for opaque tokens. Everything sits behind one small
// Hash interface so callers never pick an algorithm ad hoc.
package hash
