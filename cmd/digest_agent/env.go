package main

import (
	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/config"
	"github.com/jonathan/story-digest/internal/document"
	"github.com/jonathan/story-digest/internal/extract"
	"github.com/jonathan/story-digest/internal/fetch"
	"github.com/jonathan/story-digest/internal/handlers"
	"github.com/jonathan/story-digest/internal/imaging"
	"github.com/jonathan/story-digest/internal/observability"
	"github.com/jonathan/story-digest/internal/video"
	"github.com/rs/zerolog"
)

// loadConfig reads the config file and applies the --verbose override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// buildEnv wires the production adapters. The returned func releases the browser.
func buildEnv(cfg *config.Config, metrics *observability.Metrics, logger zerolog.Logger) (*handlers.Env, func()) {
	client := fetch.NewClient(&fetch.Options{
		Timeout:    cfg.HTTPTimeout,
		UserAgents: fetch.RandomUserAgent,
	})

	env := &handlers.Env{
		Cache:     assets.NewCache(assets.NewFileStore(cfg.AssetDir), metrics, logger),
		Pages:     client,
		Downloads: client,
		Extractor: extract.New(),
		Videos:    video.NewYTDLP(cfg.Tools.YTDLP, cfg.ToolTimeout),
		Documents: document.NewPoppler(document.Tools{
			PdfInfo:     cfg.Tools.PdfInfo,
			PdfToText:   cfg.Tools.PdfToText,
			PdfToPPM:    cfg.Tools.PdfToPPM,
			Ghostscript: cfg.Tools.Ghostscript,
		}, cfg.ToolTimeout),
		Images:   imaging.NewTranscoder(),
		Metrics:  metrics,
		Sentinel: cfg.SentinelImage,
		Logger:   logger,
	}

	cleanup := func() {}
	if cfg.ScreenshotsEnabled() {
		browser := fetch.NewBrowser(fetch.BrowserOptions{
			Timeout:  cfg.BrowserTimeout,
			ExecPath: cfg.Tools.Chrome,
		}, logger)
		env.Screenshots = browser
		cleanup = browser.Close
	}
	return env, cleanup
}
