package service

import "errors"

var (
	ErrInvalidID       = errors.New("malformed identifier")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
