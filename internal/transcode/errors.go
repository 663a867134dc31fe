// SPDX-License-Identifier: MIT

package transcode

import "fmt"

// Error reports a failed transcoder invocation. ExitCode is -1 when the
// subprocess never ran or was killed by a signal.
type Error struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("transcode failed with exit code %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("transcode failed: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
