// Command faqbased serves the question retrieval and ingestion API.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/faqbase/faqbase/api"
	"github.com/faqbase/faqbase/config"
	"github.com/faqbase/faqbase/embed"
	"github.com/faqbase/faqbase/engine"
	"github.com/faqbase/faqbase/enrich"
	"github.com/faqbase/faqbase/ingest"
	"github.com/faqbase/faqbase/langid"
	"github.com/faqbase/faqbase/question"
	"github.com/faqbase/faqbase/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	if err := run(*configPath, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, log *slog.Logger) error {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	engine.RegisterSearchFunctions()
	db, err := engine.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	st, err := store.New(db)
	if err != nil {
		return err
	}

	embedder := embed.NewLazy(func() (embed.Embedder, error) {
		return embed.NewOpenAI(embed.OpenAIConfig{
			BaseURL:    cfg.Embedder.BaseURL,
			APIKeyEnv:  cfg.Embedder.APIKeyEnv,
			Model:      cfg.Embedder.Model,
			Dimensions: cfg.Embedder.Dimensions,
			Timeout:    time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
		})
	})
	enricher := enrich.New(embedder, langid.Whatlang{})

	questions := question.NewService(st, enricher, log)
	coordinator := ingest.NewCoordinator(st, enricher, log,
		time.Duration(cfg.Ingest.JobTimeoutSecs)*time.Second)

	var watcher *ingest.Watcher
	if cfg.Ingest.WatchDir != "" {
		watcher, err = ingest.NewWatcher(coordinator, cfg.Ingest.WatchDir, log)
		if err != nil {
			return err
		}
		log.Info("watching drop folder", "dir", cfg.Ingest.WatchDir)
	}

	mux := http.NewServeMux()
	api.NewHandler(questions, coordinator, st, log).Register(mux)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Chain(mux, api.Recover(log), api.Logging(log)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	if watcher != nil {
		if err := watcher.Close(); err != nil {
			log.Error("closing watcher", "error", err)
		}
	}
	coordinator.Wait()
	questions.Close()
	return nil
}
