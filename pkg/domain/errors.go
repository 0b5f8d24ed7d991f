package domain

import "errors"

var (
	// ErrNoRole is returned when authentication succeeded transport-wise but
	// the response carried no usable role.
	ErrNoRole = errors.New("login response carried no role")
	// ErrNotAuthenticated is returned when an operation requires an active
	// session and none exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden is returned when an identity attempts an operation its
	// role does not allow.
	ErrForbidden = errors.New("forbidden")
)
