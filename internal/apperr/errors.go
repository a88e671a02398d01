// Package apperr defines the sentinel errors shared across the sync core.
package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Publish-cycle resolution errors. All are recoverable to the caller;
	// none are fatal to the process.
	ErrNotPublished      = errors.New("not published")
	ErrMissingCategory   = errors.New("missing category")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrMissingSlug       = errors.New("missing slug")
	ErrMissingIdentifier = errors.New("missing numeric identifier")

	// ErrBacklinks marks an aggregate backlink failure that blocks the
	// whole publish before any remote call is made.
	ErrBacklinks = errors.New("backlink resolution failed")
)
