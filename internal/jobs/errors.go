// SPDX-License-Identifier: MIT

package jobs

import "errors"

// ErrNotFound is returned when a polled job ID is unknown or its record was
// already reaped after a terminal observation.
var ErrNotFound = errors.New("job not found")
