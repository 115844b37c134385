package store

import "errors"

var (
	ErrNotFound      = errors.New("row not found")
	ErrDuplicateID   = errors.New("duplicate row id")
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)
