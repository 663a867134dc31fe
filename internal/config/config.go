// SPDX-License-Identifier: MIT

// Package config resolves daemon configuration from environment variables
// with sensible defaults. Precedence: flags (applied by the caller) > ENV >
// defaults.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	defaultListenAddr    = "127.0.0.1:8765"
	defaultBgUtilBaseURL = "http://stonelet:4416"

	defaultReadTimeout     = 60 * time.Second
	defaultWriteTimeout    = 0 // no timeout, downloads may be polled slowly
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 15 * time.Second
)

// Config holds the daemon configuration.
type Config struct {
	// ListenAddr is the API listen address.
	ListenAddr string

	// MetricsAddr is the Prometheus listener address; empty disables it.
	MetricsAddr string

	// DownloadDir is the default destination for finished files.
	DownloadDir string

	// BgUtilBaseURL points at the PO-token provisioning service consulted by
	// the resolver to defeat platform bot-detection. Empty disables it.
	BgUtilBaseURL string

	// LogLevel is the zerolog level name.
	LogLevel string

	// RateLimit is the per-IP request budget per minute; 0 disables limiting.
	RateLimit int

	// JobTimeout bounds a whole job pipeline; 0 means jobs run unbounded,
	// matching the historical behavior.
	JobTimeout time.Duration

	// YtdlpAutoInstall downloads a yt-dlp binary at startup when none is on
	// the PATH.
	YtdlpAutoInstall bool

	// HTTP server runtime settings.
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load resolves configuration from the environment.
func Load() Config {
	return Config{
		ListenAddr:       ParseString("YTGRAB_LISTEN", defaultListenAddr),
		MetricsAddr:      ParseString("YTGRAB_METRICS_LISTEN", ""),
		DownloadDir:      ParseString("YTGRAB_DOWNLOAD_DIR", DefaultDownloadDir()),
		BgUtilBaseURL:    ParseString("YTGRAB_BGUTIL_BASE_URL", defaultBgUtilBaseURL),
		LogLevel:         ParseString("YTGRAB_LOG_LEVEL", "info"),
		RateLimit:        ParseInt("YTGRAB_RATE_LIMIT", 0),
		JobTimeout:       ParseDuration("YTGRAB_JOB_TIMEOUT", 0),
		YtdlpAutoInstall: ParseBool("YTGRAB_YTDLP_AUTO_INSTALL", false),
		ReadTimeout:      ParseDuration("YTGRAB_SERVER_READ_TIMEOUT", defaultReadTimeout),
		WriteTimeout:     ParseDuration("YTGRAB_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
		IdleTimeout:      ParseDuration("YTGRAB_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		ShutdownTimeout:  ParseDuration("YTGRAB_SERVER_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}
}

// DefaultDownloadDir returns the user's Downloads folder, platform-dependent.
func DefaultDownloadDir() string {
	if runtime.GOOS == "windows" {
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			return filepath.Join(profile, "Downloads")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
