package domain

import "errors"

var (
	// ErrDuplicateName is returned when a source or webhook create hits
	// the unique name constraint. Caller-visible, never retried.
	ErrDuplicateName = errors.New("name already exists")

	// ErrNotFound is returned for lookups of unknown catalog ids.
	ErrNotFound = errors.New("not found")

	// ErrUnknownSourceKind rejects sources whose kind has no registered
	// fetch strategy.
	ErrUnknownSourceKind = errors.New("unsupported source kind")

	// ErrUnknownServiceKind rejects webhooks whose service kind has no
	// payload builder.
	ErrUnknownServiceKind = errors.New("unsupported service kind")
)
