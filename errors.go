package permalink

import "errors"

var (
	// ErrBlankValue is returned when an entry would end up with an empty value,
	// either because the source text is blank or sanitizes to nothing.
	ErrBlankValue = errors.New("permalink: value must not be blank")

	// ErrMissingLinkable is returned when an entry has no linkable reference.
	ErrMissingLinkable = errors.New("permalink: linkable reference is required")

	// ErrPathNotAbsolute is returned by Dispatch for paths that do not start
	// with a slash.
	ErrPathNotAbsolute = errors.New("permalink: path must be absolute")

	// ErrConflict is returned when concurrent writers kept claiming the
	// computed value and the retry budget ran out. The whole operation may be
	// retried by the caller.
	ErrConflict = errors.New("permalink: value conflict retries exhausted")

	// ErrNotConfigured is returned when a linkable type is synced without a
	// registered definition. This is an integration mistake, not a data error.
	ErrNotConfigured = errors.New("permalink: linkable type has no permalink definition")

	// ErrNotFound is returned by Store implementations when no entry matches.
	ErrNotFound = errors.New("permalink: entry not found")

	// ErrDuplicateValue is returned by Store implementations when an insert or
	// update violates the scope+value uniqueness constraint.
	ErrDuplicateValue = errors.New("permalink: value already taken within scope")
)
