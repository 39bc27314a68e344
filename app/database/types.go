package database

import (
	"fmt"
)

type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// StoreError wraps any failure to read or persist watched state.
type StoreError struct {
	Op  Op
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("watched store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func readError(err error) *StoreError {
	return &StoreError{Op: OpRead, Err: err}
}

func writeError(err error) *StoreError {
	return &StoreError{Op: OpWrite, Err: err}
}
