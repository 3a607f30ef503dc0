package db

import "errors"

// Errors callers map onto HTTP statuses
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidMove  = errors.New("invalid move")
	ErrInvalidInput = errors.New("invalid input")
)
