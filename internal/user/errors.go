package user

import (
	"errors"
)

var (
	ErrEmailNotLinked      = errors.New("email is not linked to the user")
	ErrInvalidCode         = errors.New("verification code is invalid")
	ErrCodeAlreadyReplaced = errors.New("verification code was already replaced")
	ErrInvalidEmail        = errors.New("invalid email address")
)
