// SPDX-License-Identifier: MIT

package transcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"00:01:30.50", 90.5},
		{"00:00:00.00", 0},
		{"01:00:00.00", 3600},
		{"02:30:15.25", 9015.25},
		{"bad", 0},
		{"", 0},
		{"1:2", 0},
		{"aa:bb:cc", 0},
		{"00:xx:30.50", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTimestamp(tt.in))
		})
	}
}

// stubFFmpeg writes a shell script standing in for the transcoder binary.
func stubFFmpeg(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestRun_ReportsProgress(t *testing.T) {
	script := `
echo "time=00:00:10.00 bitrate=192k" >&2
echo "time=00:00:50.00 bitrate=192k" >&2
echo "time=00:01:40.00 bitrate=192k" >&2
exit 0
`
	stage := &Stage{Binary: stubFFmpeg(t, script)}

	var got []float64
	err := stage.Run(context.Background(), "in.webm", "out.mp3", 100, func(pct float64) {
		got = append(got, pct)
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.InDelta(t, 10, got[0], 0.01)
	assert.InDelta(t, 50, got[1], 0.01)
	assert.InDelta(t, 100, got[2], 0.01)

	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i], got[i-1], "progress must be monotone")
	}
}

func TestRun_CapsProgressAtHundred(t *testing.T) {
	script := `
echo "time=00:10:00.00 bitrate=192k" >&2
exit 0
`
	stage := &Stage{Binary: stubFFmpeg(t, script)}

	var got []float64
	err := stage.Run(context.Background(), "in.webm", "out.mp3", 60, func(pct float64) {
		got = append(got, pct)
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0])
}

func TestRun_ZeroDurationSkipsProgress(t *testing.T) {
	script := `
echo "time=00:00:10.00 bitrate=192k" >&2
exit 0
`
	stage := &Stage{Binary: stubFFmpeg(t, script)}

	calls := 0
	err := stage.Run(context.Background(), "in.webm", "out.mp3", 0, func(float64) {
		calls++
	})
	require.NoError(t, err)
	assert.Zero(t, calls, "unknown duration must not emit progress")
}

func TestRun_NonZeroExit(t *testing.T) {
	script := `
echo "in.webm: Invalid data found when processing input" >&2
exit 1
`
	stage := &Stage{Binary: stubFFmpeg(t, script)}

	err := stage.Run(context.Background(), "in.webm", "out.mp3", 100, nil)
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, 1, tErr.ExitCode)
	assert.Contains(t, tErr.Stderr, "Invalid data")
}

func TestRun_MissingBinary(t *testing.T) {
	stage := &Stage{Binary: filepath.Join(t.TempDir(), "no-such-ffmpeg")}

	err := stage.Run(context.Background(), "in.webm", "out.mp3", 100, nil)
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
}

func TestConvertImage_Failure(t *testing.T) {
	stage := &Stage{Binary: stubFFmpeg(t, "echo boom >&2\nexit 1\n")}

	err := stage.ConvertImage(context.Background(), "thumb.webp", "thumb.jpg")
	var tErr *Error
	require.ErrorAs(t, err, &tErr)
	assert.Contains(t, tErr.Error(), "boom")
}
