package domain

import "errors"

var (
	ErrNonPositiveAmount = errors.New("line item amount must be greater than 0")
	ErrDuplicateLine     = errors.New("cart holds more than one line for a product")
)
