package services

import "errors"

var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("invalid input")
	// ErrForbidden is returned when the caller may not touch the record.
	ErrForbidden = errors.New("not allowed")
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
