// SPDX-License-Identifier: MIT

// Package transcode converts downloaded media to MP3 through an ffmpeg
// subprocess, deriving fractional progress from its diagnostic stream.
package transcode

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Output parameters are fixed: 44.1kHz stereo at 192kbps CBR, video dropped.
var outputArgs = []string{"-vn", "-ar", "44100", "-ac", "2", "-b:a", "192k"}

// timePattern matches elapsed-time markers in ffmpeg's stderr.
var timePattern = regexp.MustCompile(`time=(\d{2,}:\d{2}:\d{2}\.\d+)`)

// stderrTailLines bounds the diagnostics kept for error reporting.
const stderrTailLines = 12

// Progress receives fractional transcode progress in [0,100].
type Progress func(pct float64)

// Stage runs ffmpeg for single-file conversions.
type Stage struct {
	// Binary is the transcoder executable, "ffmpeg" by default.
	Binary string
}

// NewStage returns a Stage using the ffmpeg binary on the PATH.
func NewStage() *Stage {
	return &Stage{Binary: "ffmpeg"}
}

// Run transcodes inputPath to outputPath, blocking until the subprocess
// exits. While it runs, elapsed-time markers on stderr are converted into
// progress updates against totalSeconds; a zero or unknown duration skips
// reporting without affecting the conversion.
func (s *Stage) Run(ctx context.Context, inputPath, outputPath string, totalSeconds float64, progress Progress) error {
	// #nosec G204 -- binary is operator configuration, paths are job-owned
	cmd := exec.CommandContext(ctx, s.binary(), append([]string{"-y", "-i", inputPath}, append(outputArgs, outputPath)...)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &Error{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &Error{Err: err}
	}

	var tail []string
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
		if progress == nil || totalSeconds <= 0 {
			continue
		}
		if m := timePattern.FindStringSubmatch(line); m != nil {
			elapsed := ParseTimestamp(m[1])
			progress(math.Min(elapsed/totalSeconds*100, 100))
		}
	}

	if err := cmd.Wait(); err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return &Error{ExitCode: code, Stderr: strings.Join(tail, "\n"), Err: err}
	}
	return nil
}

func (s *Stage) binary() string {
	if s.Binary != "" {
		return s.Binary
	}
	return "ffmpeg"
}

// ParseTimestamp converts an "HH:MM:SS.ff" timestamp to seconds. Malformed
// input yields 0 and is never an error; such values are ignored for progress
// purposes.
func ParseTimestamp(ts string) float64 {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	sec, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0
	}
	return float64(h)*3600 + float64(m)*60 + sec
}

// ConvertImage performs a single-shot, untracked conversion of an image file
// (thumbnails to baseline JPEG for tag embedding).
func (s *Stage) ConvertImage(ctx context.Context, inputPath, outputPath string) error {
	// #nosec G204 -- binary is operator configuration, paths are job-owned
	cmd := exec.CommandContext(ctx, s.binary(), "-y", "-i", inputPath, outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &Error{Err: fmt.Errorf("convert image: %w: %s", err, tailOf(string(out)))}
	}
	return nil
}

func tailOf(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}
	return strings.Join(lines, "\n")
}
