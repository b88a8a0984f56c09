// Package validator validates inbound and event payload structs via
// struct tags. The Validator interface fronts go-playground/validator
// v10 plus the custom rules this service needs (password, otpcode,
// alphaspace).
package validator
