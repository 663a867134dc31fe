// SPDX-License-Identifier: MIT

// Package api exposes the HTTP surface of the daemon: format listing,
// job submission and progress polling.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ytgrab/ytgrab/internal/config"
	"github.com/ytgrab/ytgrab/internal/jobs"
	"github.com/ytgrab/ytgrab/internal/resolver"
)

// InfoResolver yields media metadata and the selectable format list for
// a URL.
type InfoResolver interface {
	Resolve(ctx context.Context, rawURL string) (*resolver.MediaInfo, error)
}

// Server handles all HTTP endpoints.
type Server struct {
	cfg   config.Config
	store *jobs.Store
	info  InfoResolver

	// submit starts a job and returns its ID. Indirect so tests can
	// swap in a stub without a full pipeline.
	submit func(jobs.Submit) string
}

// New constructs a Server backed by the given store, resolver and
// supervisor.
func New(cfg config.Config, store *jobs.Store, info InfoResolver, sup *jobs.Supervisor) *Server {
	return &Server{
		cfg:    cfg,
		store:  store,
		info:   info,
		submit: sup.Start,
	}
}

// Handler builds the router with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(recoverMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(corsMiddleware)
	if s.cfg.RateLimit > 0 {
		r.Use(rateLimitMiddleware(s.cfg.RateLimit))
	}

	r.Get("/get_info", s.handleInfo)
	r.Post("/download", s.handleDownload)
	r.Get("/progress/{jobID}", s.handleProgress)
	r.Get("/healthz", s.handleHealth)

	return r
}
