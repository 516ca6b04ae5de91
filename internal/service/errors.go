package service

import "errors"

var (
	ErrNotFound     = errors.New("error not found")
	ErrInvalidInput = errors.New("error invalid input")
	ErrNoPositions  = errors.New("error portfolio has no positions")
)
