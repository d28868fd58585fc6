// Package validation maps a field definition and a candidate value to at most
// one error message. Rules run in a fixed order (required, minLength,
// maxLength, email, passwordRule) and the first failure wins. All functions are
// total: failures are returned as data, never as Go errors or panics.
package validation
