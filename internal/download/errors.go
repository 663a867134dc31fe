// SPDX-License-Identifier: MIT

package download

import "fmt"

// Error reports a failed download run.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
