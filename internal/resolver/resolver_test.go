// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "dQw4w9WgXcQ"

func TestExtractVideoID_SupportedShapes(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"canonical watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch without www", "https://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"watch without scheme", "www.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"mobile subdomain", "https://m.youtube.com/watch?v=dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"watch with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractVideoID(tt.url)
			require.NoError(t, err)
			assert.Equal(t, testID, id)
		})
	}
}

func TestExtractVideoID_Rejects(t *testing.T) {
	tests := []string{
		"",
		"not a url",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=short",
		"https://vimeo.com/123456",
	}

	for _, raw := range tests {
		_, err := ExtractVideoID(raw)
		var invalid *InvalidURLError
		require.ErrorAs(t, err, &invalid, "input %q", raw)
		assert.Equal(t, raw, invalid.URL)
	}
}

const sampleDump = `{
	"title": "Test Video",
	"duration": 125,
	"thumbnail": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hq720.jpg",
	"formats": [
		{"format_id": "A", "acodec": "none", "vcodec": "none"},
		{"acodec": "aac", "vcodec": "avc1", "format_note": "720p"},
		{"format_id": "B", "acodec": "aac", "vcodec": "none", "filesize": 3145728},
		{"format_id": "C", "acodec": "aac", "vcodec": "avc1", "format_note": "1080p", "filesize_approx": 52428800},
		{"format_id": "D", "acodec": "none", "vcodec": "vp9", "resolution": "640x360"}
	]
}`

func newTestResolver(dump string, calls *int) *Resolver {
	return &Resolver{
		cache: make(map[string]*MediaInfo),
		run: func(_ context.Context, _ string) (string, error) {
			if calls != nil {
				*calls++
			}
			return dump, nil
		},
	}
}

func TestResolve_FiltersFormats(t *testing.T) {
	r := newTestResolver(sampleDump, nil)

	info, err := r.Resolve(context.Background(), "https://youtu.be/"+testID)
	require.NoError(t, err)

	want := &MediaInfo{
		ID:        testID,
		Title:     "Test Video",
		Duration:  125,
		Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/hq720.jpg",
		Formats: []Format{
			{ID: "B", Label: "Audio (Audio)", Size: "3.00 MB", Kind: KindAudio},
			{ID: "C", Label: "1080p (Video)", Size: "50.00 MB", Kind: KindAudioVideo},
			{ID: "D", Label: "640x360 (Audio)", Size: "N/A", Kind: KindVideo},
		},
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_CachesByVideoID(t *testing.T) {
	calls := 0
	r := newTestResolver(sampleDump, &calls)

	first, err := r.Resolve(context.Background(), "https://youtu.be/"+testID)
	require.NoError(t, err)

	// A different URL shape for the same video must hit the cache.
	second, err := r.Resolve(context.Background(), "https://www.youtube.com/watch?v="+testID)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second resolve must not re-invoke the runner")
	assert.Same(t, first, second)
}

func TestResolve_InvalidURLSkipsRunner(t *testing.T) {
	calls := 0
	r := newTestResolver(sampleDump, &calls)

	_, err := r.Resolve(context.Background(), "https://example.com/nope")
	var invalid *InvalidURLError
	require.ErrorAs(t, err, &invalid)
	assert.Zero(t, calls, "invalid URLs must fail before any network access")
}

func TestResolve_RunnerFailure(t *testing.T) {
	cause := errors.New("extractor blew up")
	r := &Resolver{
		cache: make(map[string]*MediaInfo),
		run: func(_ context.Context, _ string) (string, error) {
			return "", cause
		},
	}

	_, err := r.Resolve(context.Background(), "https://youtu.be/"+testID)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, testID, resErr.VideoID)
	assert.ErrorIs(t, err, cause)
}

func TestResolve_MalformedDump(t *testing.T) {
	r := newTestResolver("{not json", nil)

	_, err := r.Resolve(context.Background(), "https://youtu.be/"+testID)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{125, "2:05"},
		{3725, "62:05"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds))
	}
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v="+testID, WatchURL(testID))
}
