// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStage     = "stage"

	// Media fields
	FieldURL      = "url"
	FieldVideoID  = "video_id"
	FieldFormat   = "format"
	FieldPath     = "path"
	FieldProgress = "progress"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
