// SPDX-License-Identifier: MIT

package resolver

import "fmt"

// InvalidURLError reports an input URL from which no canonical video
// identifier could be extracted. It is raised before any network access.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid video URL: %q", e.URL)
}

// ResolutionError reports a failed metadata lookup for a valid identifier.
type ResolutionError struct {
	VideoID string
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve metadata for %s: %v", e.VideoID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
