package converter

import (
	"errors"
	"fmt"
)

// ValidationError rejects bad input before any work starts. Surfaced to HTTP
// callers as a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PlaylistError means an existing master playlist could not be parsed or is
// not a master playlist at all. Fatal only to the attach operation.
type PlaylistError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PlaylistError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("playlist %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("playlist %s: %s", e.Path, e.Reason)
}

func (e *PlaylistError) Unwrap() error { return e.Err }

// ErrNoRenditions guards the invariant that planning never yields zero
// targets; it fires only on a regression.
var ErrNoRenditions = errors.New("conversion produced no renditions")

// RenditionFailures aggregates per-rendition encode failures after the whole
// fan-out has settled. The message leads with the count; the individual
// errors remain reachable through Unwrap for diagnostics.
type RenditionFailures struct {
	Failures []error
}

func (e *RenditionFailures) Error() string {
	return fmt.Sprintf("%d of the requested resolutions failed to convert", len(e.Failures))
}

func (e *RenditionFailures) Unwrap() []error { return e.Failures }

func isPlaylistError(err error) bool {
	var pe *PlaylistError
	return errors.As(err, &pe)
}
