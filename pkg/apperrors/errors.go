package apperrors

import "errors"

var (
	ErrInvalidURL = errors.New("invalid URL")
)
