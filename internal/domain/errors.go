package domain

import "errors"

var (
	ErrInvalidPreset   = errors.New("invalid preset id")
	ErrUnknownColor    = errors.New("unknown color code")
	ErrInvalidRotation = errors.New("rotation must be 0, 90, 180 or 270")
	ErrInvalidSpeed    = errors.New("scroll speed must be positive")
)
