package model

import "net/mail"

// ValidEmail reports whether s is a plain, well-formed e-mail address
// (no display name).
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ValidateEmail returns a ValidationError when s is not a well-formed
// e-mail address.
func ValidateEmail(s string) error {
	if !ValidEmail(s) {
		return &ValidationError{Field: "email", Reason: "e-mail provided is not valid: " + s}
	}
	return nil
}
