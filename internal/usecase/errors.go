package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrInvalidState          = errors.New("invalid state")
	ErrConflict              = errors.New("conflict")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrUpstreamUnavailable   = errors.New("upstream unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
