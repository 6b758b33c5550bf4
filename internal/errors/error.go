package errors

import "github.com/pkg/errors"

var (
	// common errors
	ErrConnectionTimeout = errors.New("connection timeout")

	// provider errors
	ErrProviderUnavailable = errors.New("availability provider unavailable")
	ErrBatchTooLarge       = errors.New("batch exceeds provider cap")

	// domain errors
	ErrDomainNotFound   = errors.New("domain not found")
	ErrUnknownExtension = errors.New("unknown domain extension")
)
