package model

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrIncorrectPassword = errors.New("incorrect username or password")
	ErrUsernameExists    = errors.New("username already exists")
	ErrUsernameTooShort  = errors.New("username must be at least 3 characters long")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters long")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrBookingExists      = errors.New("booking id already exists")
)
