package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no object is stored under the requested digest.
	ErrNotFound = errors.New("object not found")
	// ErrDecode means the stored bytes could not be decompressed or do not
	// hash to the digest they are stored under.
	ErrDecode = errors.New("object decode failed")
	// ErrParse means a framed header, tree entry or commit header is
	// malformed.
	ErrParse = errors.New("malformed object")
	// ErrValidation means the caller supplied input the object model
	// disallows, such as duplicate tree entry names.
	ErrValidation = errors.New("invalid object input")
	// ErrIO wraps filesystem failures outside the store's control.
	ErrIO = errors.New("object store i/o failure")

	// ErrTypeMismatch is returned by the typed readers when the stored kind
	// differs from the requested one. It matches ErrParse.
	ErrTypeMismatch = fmt.Errorf("%w: type mismatch", ErrParse)
)

func ioError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}
