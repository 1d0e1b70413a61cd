package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a storage failure
type ErrorKind string

const (
	KindInit  ErrorKind = "init"
	KindRead  ErrorKind = "read"
	KindWrite ErrorKind = "write"
)

// StorageError wraps an engine error with the operation and kind that produced it
type StorageError struct {
	Op     string    `json:"op"`
	Kind   ErrorKind `json:"kind"`
	Source string    `json:"source"`
	Err    error     `json:"-"`
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Source, e.Kind, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError returns nil when err is nil
func NewStorageError(source, op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Kind: kind, Source: source, Err: err}
}

// IsKind reports whether err is a StorageError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}

// CustomError is an error with the HTTP status and error type it should be reported with
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}
