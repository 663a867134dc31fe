// SPDX-License-Identifier: MIT

// Package jobs owns the per-job state machine and the process-wide job
// status store polled by clients.
package jobs

// Status is a job state. Lifecycle:
//
//	starting → downloading → (postprocessing →)? completed
//
// with error reachable from any non-terminal state. completed and error are
// terminal; a record observed in a terminal state is reaped by its poller.
type Status string

const (
	StatusStarting       Status = "starting"
	StatusDownloading    Status = "downloading"
	StatusPostprocessing Status = "postprocessing"
	StatusCompleted      Status = "completed"
	StatusError          Status = "error"
)

// Terminal reports whether no further transitions occur from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Snapshot is the poller-visible view of a job.
type Snapshot struct {
	Status   Status  `json:"status"`
	Progress float64 `json:"progress"`
	Filepath string  `json:"filepath,omitempty"`
	Details  string  `json:"details,omitempty"`
}

// Submit describes a job request.
type Submit struct {
	URL       string
	FormatID  string
	Directory string // empty selects the configured default
}

// AudioFormatID is the format selector requesting the audio transcode path
// instead of a direct yt-dlp format download.
const AudioFormatID = "mp3"
