// SPDX-License-Identifier: MIT

// Package resolver extracts canonical video identifiers from user-supplied
// URLs and fetches format and duration metadata through yt-dlp.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/lrstanley/go-ytdlp"
)

// idPattern matches the supported URL shapes: canonical watch URLs, youtu.be
// short links, shorts and embed forms, with or without www/m subdomains.
var idPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:m\.)?(?:youtube\.com/(?:watch\?v=|embed/|shorts/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// MediaKind tags a format's payload.
type MediaKind string

const (
	KindAudio      MediaKind = "audio"
	KindVideo      MediaKind = "video"
	KindAudioVideo MediaKind = "audio+video"
)

// Format is a selectable encoding/quality/container option.
type Format struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Size  string    `json:"size"`
	Kind  MediaKind `json:"-"`
}

// MediaInfo is the resolved, read-only view over yt-dlp metadata.
type MediaInfo struct {
	ID        string
	Title     string
	Duration  float64 // seconds
	Thumbnail string
	Formats   []Format
}

// runFunc executes a metadata dump for the given canonical URL and returns
// the raw single-JSON output. Swappable in tests.
type runFunc func(ctx context.Context, url string) (string, error)

// Resolver caches metadata lookups keyed by canonical video ID. The cache is
// unbounded for the process lifetime; the key space is user-driven.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]*MediaInfo
	run   runFunc
}

// Options configures a Resolver.
type Options struct {
	// BgUtilBaseURL, when set, is passed to yt-dlp's bgutil PO-token
	// extractor to defeat platform bot-detection.
	BgUtilBaseURL string
}

// New returns a Resolver backed by the yt-dlp runner.
func New(opts Options) *Resolver {
	return &Resolver{
		cache: make(map[string]*MediaInfo),
		run:   ytdlpRunner(opts.BgUtilBaseURL),
	}
}

// ExtractVideoID returns the 11-character canonical identifier embedded in
// rawURL, or an InvalidURLError without any network access.
func ExtractVideoID(rawURL string) (string, error) {
	m := idPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", &InvalidURLError{URL: rawURL}
	}
	return m[1], nil
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Resolve returns metadata for rawURL, serving repeated lookups of the same
// video from cache.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*MediaInfo, error) {
	videoID, err := ExtractVideoID(rawURL)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if info, ok := r.cache[videoID]; ok {
		r.mu.Unlock()
		return info, nil
	}
	r.mu.Unlock()

	out, err := r.run(ctx, WatchURL(videoID))
	if err != nil {
		return nil, &ResolutionError{VideoID: videoID, Err: err}
	}

	info, err := parseInfo(videoID, out)
	if err != nil {
		return nil, &ResolutionError{VideoID: videoID, Err: err}
	}

	r.mu.Lock()
	r.cache[videoID] = info
	r.mu.Unlock()
	return info, nil
}

// Duration returns the media duration in seconds for rawURL.
func (r *Resolver) Duration(ctx context.Context, rawURL string) (float64, error) {
	info, err := r.Resolve(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

func ytdlpRunner(bgutilBaseURL string) runFunc {
	return func(ctx context.Context, url string) (string, error) {
		dl := ytdlp.New().
			Quiet().
			NoPlaylist().
			SkipDownload().
			DumpSingleJSON()
		if bgutilBaseURL != "" {
			dl = dl.ExtractorArgs("youtubepot-bgutilhttp:base_url=" + bgutilBaseURL)
		}
		res, err := dl.Run(ctx, url)
		if err != nil {
			return "", err
		}
		return res.Stdout, nil
	}
}

// dumpInfo mirrors the subset of yt-dlp's --dump-single-json output we read.
type dumpInfo struct {
	Title     string       `json:"title"`
	Duration  float64      `json:"duration"`
	Thumbnail string       `json:"thumbnail"`
	Formats   []dumpFormat `json:"formats"`
}

type dumpFormat struct {
	FormatID       string   `json:"format_id"`
	FormatNote     string   `json:"format_note"`
	Resolution     string   `json:"resolution"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
}

func parseInfo(videoID, raw string) (*MediaInfo, error) {
	var dump dumpInfo
	if err := json.Unmarshal([]byte(raw), &dump); err != nil {
		return nil, fmt.Errorf("parse metadata dump: %w", err)
	}

	info := &MediaInfo{
		ID:        videoID,
		Title:     dump.Title,
		Duration:  dump.Duration,
		Thumbnail: dump.Thumbnail,
	}
	if info.Title == "" {
		info.Title = "Unknown"
	}

	for _, f := range dump.Formats {
		// Skip entries without a selector and entries carrying neither audio
		// nor video payload.
		if f.FormatID == "" || (f.VCodec == "none" && f.ACodec == "none") {
			continue
		}
		info.Formats = append(info.Formats, Format{
			ID:    f.FormatID,
			Label: formatLabel(f),
			Size:  formatSize(f),
			Kind:  formatKind(f),
		})
	}
	return info, nil
}

func formatKind(f dumpFormat) MediaKind {
	hasVideo := f.VCodec != "none" && f.VCodec != ""
	hasAudio := f.ACodec != "none" && f.ACodec != ""
	switch {
	case hasVideo && hasAudio:
		return KindAudioVideo
	case hasVideo:
		return KindVideo
	default:
		return KindAudio
	}
}

func formatLabel(f dumpFormat) string {
	quality := f.FormatNote
	if quality == "" {
		quality = f.Resolution
	}
	if quality == "" {
		quality = "Audio"
	}
	kind := "Audio"
	if f.VCodec != "none" && f.ACodec != "none" {
		kind = "Video"
	}
	return fmt.Sprintf("%s (%s)", quality, kind)
}

func formatSize(f dumpFormat) string {
	size := f.Filesize
	if size == nil {
		size = f.FilesizeApprox
	}
	if size == nil || *size <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f MB", *size/(1024*1024))
}

// FormatDuration renders a duration in seconds as "M:SS".
func FormatDuration(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
