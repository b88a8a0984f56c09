// Package mail is the outbound email contract. The notifier works
// against the Mail interface and Message payload; the SMTP sender in
// this package is one implementation, a provider API could be another.
package mail
