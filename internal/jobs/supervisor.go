// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ytgrab/ytgrab/internal/download"
	"github.com/ytgrab/ytgrab/internal/log"
	"github.com/ytgrab/ytgrab/internal/metrics"
	"github.com/ytgrab/ytgrab/internal/transcode"
)

// MetadataResolver supplies the media duration for audio jobs. The value is
// cosmetic: it only scales transcode progress.
type MetadataResolver interface {
	Duration(ctx context.Context, url string) (float64, error)
}

// Downloader streams the requested format to disk.
type Downloader interface {
	Run(ctx context.Context, opts download.Options, progress download.Progress) (download.Result, error)
}

// Transcoder converts a downloaded container to the final audio output.
type Transcoder interface {
	Run(ctx context.Context, inputPath, outputPath string, totalSeconds float64, progress transcode.Progress) error
}

// Tagger embeds artwork into the finished audio file. Failures are
// non-fatal to the job.
type Tagger interface {
	EmbedArtwork(ctx context.Context, audioPath, thumbPath string) error
}

// Deps holds the supervisor's collaborators.
type Deps struct {
	Store       *Store
	Resolver    MetadataResolver
	Downloader  Downloader
	Transcoder  Transcoder
	Tagger      Tagger
	DownloadDir string

	// Timeout bounds a whole job pipeline; 0 leaves jobs unbounded.
	Timeout time.Duration
}

// Supervisor drives the end-to-end state machine for submitted jobs, one
// goroutine per job. It is the only writer of terminal states and
// guarantees temporary artifacts are removed on every exit path.
type Supervisor struct {
	deps Deps
}

// NewSupervisor returns a Supervisor using deps.
func NewSupervisor(deps Deps) *Supervisor {
	return &Supervisor{deps: deps}
}

// Start registers the job and spawns its pipeline, returning the job ID
/// immediately. Jobs are detached from the submitting request's context:
// once started they run to completion or failure.
func (s *Supervisor) Start(req Submit) string {
	id := uuid.New().String()
	s.deps.Store.Create(id)
	metrics.JobsStarted.Inc()
	go s.run(id, req)
	return id
}

func (s *Supervisor) run(id string, req Submit) {
	ctx := log.ContextWithJobID(context.Background(), id)
	cancel := context.CancelFunc(func() {})
	if s.deps.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.deps.Timeout)
	}
	defer cancel()

	logger := log.WithComponentFromContext(ctx, "supervisor")
	cleanup := &artifactSet{}

	// A panic anywhere in the pipeline must not take the process down; it
	// terminates this job like any other failure.
	defer func() {
		if rec := recover(); rec != nil {
			cleanup.removeAll(logger)
			s.deps.Store.Fail(id, fmt.Sprintf("internal error: %v", rec))
			metrics.JobsFailed.WithLabelValues("panic").Inc()
			logger.Error().
				Str(log.FieldEvent, "job.panic").
				Interface("panic_value", rec).
				Msg("job goroutine panicked")
		}
	}()

	fail := func(stage string, err error) {
		cleanup.removeAll(logger)
		s.deps.Store.Fail(id, err.Error())
		metrics.JobsFailed.WithLabelValues(stage).Inc()
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "job.failed").
			Str(log.FieldStage, stage).
			Msg("job failed")
	}

	dir := req.Directory
	if dir == "" {
		dir = s.deps.DownloadDir
	}
	audio := req.FormatID == AudioFormatID

	logger.Info().
		Str(log.FieldEvent, "job.started").
		Str(log.FieldURL, req.URL).
		Str(log.FieldFormat, req.FormatID).
		Msg("job started")

	// Duration is only needed to scale transcode progress; the lookup is
	// served from the resolver cache when get_info ran first.
	var totalSeconds float64
	if audio {
		var err error
		totalSeconds, err = s.deps.Resolver.Duration(ctx, req.URL)
		if err != nil {
			fail("resolve", err)
			return
		}
	}

	s.deps.Store.Update(id, StatusDownloading, 0)
	downloadStart := time.Now()
	res, err := s.deps.Downloader.Run(ctx, download.Options{
		URL:    req.URL,
		Format: req.FormatID,
		Dir:    dir,
		JobID:  id,
		Audio:  audio,
	}, func(pct float64) {
		s.deps.Store.Update(id, StatusDownloading, pct)
	})
	if err != nil {
		// A failed audio run may have left prefixed partial files behind.
		if audio {
			cleanup.addMatching(dir, id)
		}
		fail("download", err)
		return
	}
	metrics.StageDuration.WithLabelValues("download").Observe(time.Since(downloadStart).Seconds())

	if !audio {
		s.deps.Store.Complete(id, res.FilePath)
		metrics.JobsCompleted.Inc()
		logger.Info().
			Str(log.FieldEvent, "job.completed").
			Str(log.FieldPath, res.FilePath).
			Msg("job completed")
		return
	}

	cleanup.add(res.AudioPath)
	cleanup.add(res.ThumbPath)

	finalPath := download.FinalAudioPath(res.AudioPath, id)
	s.deps.Store.Update(id, StatusPostprocessing, 0)
	transcodeStart := time.Now()
	err = s.deps.Transcoder.Run(ctx, res.AudioPath, finalPath, totalSeconds, func(pct float64) {
		s.deps.Store.Update(id, StatusPostprocessing, pct)
	})
	if err != nil {
		cleanup.add(finalPath) // partial output is an artifact too
		fail("transcode", err)
		return
	}
	metrics.StageDuration.WithLabelValues("transcode").Observe(time.Since(transcodeStart).Seconds())

	if res.ThumbPath != "" && s.deps.Tagger != nil {
		if err := s.deps.Tagger.EmbedArtwork(ctx, finalPath, res.ThumbPath); err != nil {
			metrics.TaggingFailures.Inc()
			logger.Warn().
				Err(err).
				Str(log.FieldEvent, "job.tagging_failed").
				Msg("artwork embedding failed, job stays successful")
		}
	}

	// Temporaries go before the terminal state is published.
	cleanup.removeAll(logger)
	s.deps.Store.Complete(id, finalPath)
	metrics.JobsCompleted.Inc()
	logger.Info().
		Str(log.FieldEvent, "job.completed").
		Str(log.FieldPath, finalPath).
		Msg("job completed")
}

// artifactSet tracks temporary files owned by one running job.
type artifactSet struct {
	paths []string
}

func (a *artifactSet) add(path string) {
	if path != "" {
		a.paths = append(a.paths, path)
	}
}

// addMatching registers every file in dir carrying the job's temp prefix.
func (a *artifactSet) addMatching(dir, jobID string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), jobID) {
			a.add(filepath.Join(dir, entry.Name()))
		}
	}
}

func (a *artifactSet) removeAll(logger zerolog.Logger) {
	for _, path := range a.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn().
				Err(err).
				Str(log.FieldPath, path).
				Msg("failed to remove temporary artifact")
		}
	}
	a.paths = nil
}
