// SPDX-License-Identifier: MIT

package download

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestLocateArtifacts(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "job1---My Song.webm"))
	touch(t, filepath.Join(dir, "job1---My Song.webp"))
	touch(t, filepath.Join(dir, "job2---Other Song.m4a"))
	touch(t, filepath.Join(dir, "unrelated.mp3"))

	audio, thumb, err := LocateArtifacts(dir, "job1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job1---My Song.webm"), audio)
	assert.Equal(t, filepath.Join(dir, "job1---My Song.webp"), thumb)
}

func TestLocateArtifacts_NoThumbnail(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "job1---My Song.m4a"))

	audio, thumb, err := LocateArtifacts(dir, "job1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "job1---My Song.m4a"), audio)
	assert.Empty(t, thumb)
}

func TestLocateArtifacts_MissingMedia(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "job1---My Song.jpg"))

	_, _, err := LocateArtifacts(dir, "job1")
	assert.Error(t, err)
}

func TestFinalAudioPath(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		jobID string
		want  string
	}{
		{
			name:  "simple title",
			in:    "/dl/job1---My Song.webm",
			jobID: "job1",
			want:  "/dl/My Song.mp3",
		},
		{
			name:  "title containing dots",
			in:    "/dl/job1---feat. Artist v2.5.m4a",
			jobID: "job1",
			want:  "/dl/feat. Artist v2.5.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FinalAudioPath(tt.in, tt.jobID))
		})
	}
}
