package drive

import "errors"

// Validation failures are rejected before any remote call and never reach the banner.
var (
	ErrEmptyName    = errors.New("name must not be empty")
	ErrSelfNesting  = errors.New("a folder cannot be moved into itself")
	ErrNotConfirmed = errors.New("destructive action not confirmed")
)

var (
	// ErrSuperseded is returned by a folder load or search whose response
	// arrived after a newer one was issued; the response is discarded.
	ErrSuperseded = errors.New("folder load superseded by a newer navigation")
	// ErrDetached is returned by drag callbacks after Teardown
	ErrDetached = errors.New("drag engine torn down")
	// ErrBadIndex is returned by a reorder outside the current list
	ErrBadIndex = errors.New("reorder index out of range")
)
