// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lrstanley/go-ytdlp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ytgrab/ytgrab/internal/api"
	"github.com/ytgrab/ytgrab/internal/config"
	"github.com/ytgrab/ytgrab/internal/download"
	"github.com/ytgrab/ytgrab/internal/jobs"
	ytlog "github.com/ytgrab/ytgrab/internal/log"
	"github.com/ytgrab/ytgrab/internal/resolver"
	"github.com/ytgrab/ytgrab/internal/tagging"
	"github.com/ytgrab/ytgrab/internal/transcode"
)

var (
	version   = "v1.0.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	listenFlag := flag.String("listen", "", "listen address (overrides YTGRAB_LISTEN)")
	bgutilFlag := flag.String("bgutil-base", "", "PO token provider base URL (overrides YTGRAB_BGUTIL_BASE_URL)")
	dirFlag := flag.String("download-dir", "", "default download directory (overrides YTGRAB_DOWNLOAD_DIR)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// Best-effort .env for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	if *listenFlag != "" {
		cfg.ListenAddr = *listenFlag
	}
	if *bgutilFlag != "" {
		cfg.BgUtilBaseURL = *bgutilFlag
	}
	if *dirFlag != "" {
		cfg.DownloadDir = *dirFlag
	}

	ytlog.Configure(ytlog.Config{
		Level:   cfg.LogLevel,
		Service: "ytgrab",
		Version: version,
	})
	logger := ytlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DownloadDir, 0o755); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.download_dir_failed").
			Str(ytlog.FieldPath, cfg.DownloadDir).
			Msg("cannot create download directory")
	}

	if cfg.YtdlpAutoInstall {
		logger.Info().Str("event", "startup.ytdlp_install").Msg("ensuring yt-dlp binary is available")
		if _, err := ytdlp.Install(ctx, nil); err != nil {
			logger.Fatal().
				Err(err).
				Str("event", "startup.ytdlp_install_failed").
				Msg("yt-dlp installation failed")
		}
	}

	res := resolver.New(resolver.Options{BgUtilBaseURL: cfg.BgUtilBaseURL})
	store := jobs.NewStore()
	sup := jobs.NewSupervisor(jobs.Deps{
		Store:       store,
		Resolver:    res,
		Downloader:  download.NewStage(),
		Transcoder:  transcode.NewStage(),
		Tagger:      tagging.NewEmbedder(transcode.NewStage()),
		DownloadDir: cfg.DownloadDir,
		Timeout:     cfg.JobTimeout,
	})

	srv := api.New(cfg, store, res, sup)

	apiServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("event", "startup.listen").
			Str("addr", cfg.ListenAddr).
			Str("download_dir", cfg.DownloadDir).
			Msg("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:        cfg.MetricsAddr,
			Handler:     mux,
			ReadTimeout: cfg.ReadTimeout,
		}
		g.Go(func() error {
			logger.Info().
				Str("event", "startup.metrics_listen").
				Str("addr", cfg.MetricsAddr).
				Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Str("event", "shutdown.begin").Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		err := apiServer.Shutdown(shutdownCtx)
		if metricsServer != nil {
			if merr := metricsServer.Shutdown(shutdownCtx); err == nil {
				err = merr
			}
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.failed").
			Msg("daemon exited with error")
	}
	logger.Info().Str("event", "shutdown.complete").Msg("server exiting")
}
