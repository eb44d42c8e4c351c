// Package covertart holds only the interface shape a cover-art lookup would
// implement. Fetching art from the PlayStation Store is explicitly out of
// scope (spec.md Non-goals); this package exists so callers that want to
// plug in their own HTTP client have a type to implement against, without
// this repo shipping an HTTP client for it. An implementation should return
// pyps4err.ErrPSDataIncomplete when the store returns a malformed record.
package covertart

import "context"

// Lookup resolves a title ID to a cover-art URL. No implementation ships in
// this repository.
type Lookup interface {
	CoverArtURL(ctx context.Context, titleID string) (string, error)
}
