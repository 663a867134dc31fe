// SPDX-License-Identifier: MIT

// Package download streams a chosen media format to disk through yt-dlp,
// translating the library's progress callbacks into fractional updates.
package download

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// tempSeparator joins the job ID prefix with the media title in temporary
// filenames, keeping concurrent jobs collision-free in a shared directory.
const tempSeparator = "---"

// audioFormat is the selector used for audio-output jobs; the chosen
// container is transcoded afterwards.
const audioFormat = "bestaudio/best"

// progressInterval throttles yt-dlp progress callbacks.
const progressInterval = 500 * time.Millisecond

// Progress receives fractional download progress in [0,100].
type Progress func(pct float64)

// Options describes a single download run.
type Options struct {
	URL    string
	Format string // yt-dlp format selector; ignored for audio jobs
	Dir    string
	JobID  string
	Audio  bool // audio-output job: prefixed temp name, thumbnail retrieval
}

// Result carries the paths produced by a run. Exactly one of FilePath or
// AudioPath is set, depending on Options.Audio.
type Result struct {
	FilePath  string // library-resolved output path (direct downloads)
	AudioPath string // jobID-prefixed temporary media file (audio jobs)
	ThumbPath string // jobID-prefixed thumbnail, empty when none was written
}

// Stage invokes yt-dlp for a single job.
type Stage struct{}

// NewStage returns a ready download stage.
func NewStage() *Stage {
	return &Stage{}
}

// Run downloads the requested format into opts.Dir. Audio jobs are stored
// under a job-ID-prefixed temporary name with the thumbnail alongside;
// direct jobs keep the library-resolved name.
func (s *Stage) Run(ctx context.Context, opts Options, progress Progress) (Result, error) {
	format := opts.Format
	outtmpl := filepath.Join(opts.Dir, "%(title)s.%(ext)s")
	if opts.Audio {
		format = audioFormat
		outtmpl = filepath.Join(opts.Dir, opts.JobID+tempSeparator+"%(title)s.%(ext)s")
	}

	dl := ytdlp.New().
		NoPlaylist().
		Format(format).
		Output(outtmpl)
	if opts.Audio {
		dl = dl.WriteThumbnail()
	}

	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		if progress == nil || update.TotalBytes <= 0 {
			return
		}
		pct := float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
		progress(math.Min(pct, 100))
	})

	res, err := dl.Run(ctx, opts.URL)
	if err != nil {
		return Result{}, &Error{URL: opts.URL, Err: err}
	}

	if opts.Audio {
		audioPath, thumbPath, err := LocateArtifacts(opts.Dir, opts.JobID)
		if err != nil {
			return Result{}, &Error{URL: opts.URL, Err: err}
		}
		return Result{AudioPath: audioPath, ThumbPath: thumbPath}, nil
	}

	// The library may rewrite or sanitize the requested name; trust its
	// extracted info for the final path.
	info, err := res.GetExtractedInfo()
	if err == nil && len(info) > 0 && info[0].Filename != nil && *info[0].Filename != "" {
		return Result{FilePath: *info[0].Filename}, nil
	}
	return Result{}, &Error{URL: opts.URL, Err: errors.New("download finished but no output path was reported")}
}

// thumbnailExts are the image containers yt-dlp writes thumbnails in.
var thumbnailExts = map[string]bool{
	".webp": true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// LocateArtifacts scans dir for the job's temporary files, classifying them
// into the downloaded media file and an optional thumbnail.
func LocateArtifacts(dir, jobID string) (audioPath, thumbPath string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", err
	}
	prefix := jobID + tempSeparator
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if thumbnailExts[strings.ToLower(filepath.Ext(name))] {
			thumbPath = filepath.Join(dir, name)
		} else {
			audioPath = filepath.Join(dir, name)
		}
	}
	if audioPath == "" {
		return "", "", errors.New("temporary downloaded media file not found")
	}
	return audioPath, thumbPath, nil
}

// FinalAudioPath derives the final transcoded output path from a temporary
// audio path: the job ID prefix is stripped and the container extension is
// replaced with .mp3.
func FinalAudioPath(audioPath, jobID string) string {
	base := strings.TrimPrefix(filepath.Base(audioPath), jobID+tempSeparator)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".mp3"
	return filepath.Join(filepath.Dir(audioPath), base)
}
