package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/lysyi3m/blepo/app/api"
	"github.com/lysyi3m/blepo/app/cfg"
	"github.com/lysyi3m/blepo/app/cli"
	"github.com/lysyi3m/blepo/app/config"
	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/feed"
	"github.com/lysyi3m/blepo/app/pipeline"
	"github.com/lysyi3m/blepo/app/player"
	"github.com/lysyi3m/blepo/app/shorts"
	"github.com/lysyi3m/blepo/app/video"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	setupLogging(appCfg.Debug)
	slog.Debug("Configuration loaded", "config", appCfg.ConfigPath, "data_dir", appCfg.DataDir, "store", appCfg.Store, "version", appCfg.Version)

	configCache := config.NewCache(appCfg.ConfigPath)
	if err := configCache.Run(); err != nil {
		return err
	}

	store, closeStore, err := openStore(appCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := &http.Client{Timeout: appCfg.Timeout}
	source := feed.NewFallbackSource(
		feed.NewRSSSource(httpClient, feed.NewParser(),
			feed.WithUserAgent(appCfg.UserAgent),
			feed.WithTimeout(appCfg.Timeout)),
		feed.NewYtDlpSource(appCfg.YtDlpBinary, appCfg.YtDlpTimeout),
	)

	classifier := shorts.NewHTTPClassifier(shorts.Config{
		UserAgent: appCfg.UserAgent,
		Timeout:   appCfg.Timeout,
		Rate:      rate.Limit(appCfg.ShortsRate),
		Burst:     appCfg.ShortsBurst,
	})

	videoPipeline := pipeline.New(source, classifier, pipeline.WithMaxConcurrency(appCfg.MaxConcurrency))

	newPlayer := func() (player.Player, error) {
		mpv, err := player.NewMpvPlayer(appCfg.PlayerBinary, appCfg.YtDlpBinary)
		if err != nil {
			return nil, err
		}
		return mpv, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if appCfg.Serve {
		gin.SetMode(gin.ReleaseMode)
		gin.DefaultWriter = os.Stderr

		handler := api.NewHandler(videoPipeline, store, newPlayer, configCache, cfg.Get().Version)
		return serve(ctx, api.NewServer(handler, appCfg.APIAccessKey), appCfg.Port)
	}

	fmt.Fprintln(os.Stderr, "Updating videos list...")

	channelConfig, err := configCache.Get()
	if err != nil {
		return err
	}

	return fetchThenPrompt(ctx, stop,
		func(ctx context.Context) ([]video.Video, error) {
			return videoPipeline.Run(ctx, channelConfig.Channels, channelConfig.Window, store)
		},
		func(videos []video.Video) error {
			return cli.NewSession(videos, store, newPlayer, os.Stdin, os.Stdout).Run()
		})
}

// fetchThenPrompt releases the interrupt handler once fetching is done so
// Ctrl-C at the prompt terminates the process.
func fetchThenPrompt(ctx context.Context, stop context.CancelFunc,
	fetch func(context.Context) ([]video.Video, error), prompt func([]video.Video) error) error {
	videos, err := fetch(ctx)
	stop()
	if err != nil {
		return err
	}

	return prompt(videos)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func openStore(appCfg *cfg.Cfg) (database.WatchedStore, func(), error) {
	switch appCfg.Store {
	case "sqlite":
		store, err := database.NewSQLiteStore(appCfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close database", "error", err)
			}
		}, nil
	default:
		store, err := database.NewJSONStore(appCfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func serve(ctx context.Context, engine *gin.Engine, port string) error {
	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server gracefully...")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
