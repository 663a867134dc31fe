// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ytgrab/ytgrab/internal/jobs"
	"github.com/ytgrab/ytgrab/internal/log"
	"github.com/ytgrab/ytgrab/internal/resolver"
)

type formatEntry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Size  string `json:"size"`
}

type infoResponse struct {
	Title     string        `json:"title"`
	Duration  string        `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	Formats   []formatEntry `json:"formats"`
}

type downloadRequest struct {
	URL       string `json:"url"`
	FormatID  string `json:"formatId"`
	Directory string `json:"directory"`
}

type downloadResponse struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeBadRequest(w, "missing url parameter")
		return
	}

	info, err := s.info.Resolve(r.Context(), rawURL)
	if err != nil {
		var invalid *resolver.InvalidURLError
		if errors.As(err, &invalid) {
			logger.Warn().
				Str(log.FieldEvent, "info.invalid_url").
				Str(log.FieldURL, rawURL).
				Msg("rejected non-YouTube URL")
			writeBadRequest(w, "invalid YouTube URL")
			return
		}
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "info.resolve_failed").
			Str(log.FieldURL, rawURL).
			Msg("metadata resolution failed")
		writeInternalError(w, "failed to fetch video info")
		return
	}

	resp := infoResponse{
		Title:     info.Title,
		Duration:  resolver.FormatDuration(info.Duration),
		Thumbnail: info.Thumbnail,
		Formats:   make([]formatEntry, 0, len(info.Formats)),
	}
	for _, f := range info.Formats {
		resp.Formats = append(resp.Formats, formatEntry{ID: f.ID, Label: f.Label, Size: f.Size})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")

	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}
	if req.FormatID == "" {
		writeBadRequest(w, "missing formatId")
		return
	}
	videoID, err := resolver.ExtractVideoID(req.URL)
	if err != nil {
		writeBadRequest(w, "invalid YouTube URL")
		return
	}

	id := s.submit(jobs.Submit{
		URL:       resolver.WatchURL(videoID),
		FormatID:  req.FormatID,
		Directory: req.Directory,
	})

	logger.Info().
		Str(log.FieldEvent, "job.accepted").
		Str(log.FieldJobID, id).
		Str(log.FieldVideoID, videoID).
		Str(log.FieldFormat, req.FormatID).
		Msg("job accepted")

	writeJSON(w, http.StatusAccepted, downloadResponse{JobID: id})
}

// handleProgress returns the job snapshot. Terminal records are removed
// after the response is written, so the submitting client observes the
// final state exactly once.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")

	snap, err := s.store.Get(id)
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, snap)

	if snap.Status.Terminal() {
		s.store.Remove(id)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
