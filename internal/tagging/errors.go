// SPDX-License-Identifier: MIT

package tagging

import "fmt"

// Error reports a failed artwork embedding. The surrounding job stays
// successful; the error is recorded for diagnostics only.
type Error struct {
	AudioPath string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embed artwork into %s: %v", e.AudioPath, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
