package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/bnema/entertainbot/internal/adapters/convlog"
	"github.com/bnema/entertainbot/internal/adapters/fetch"
	"github.com/bnema/entertainbot/internal/adapters/jikan"
	"github.com/bnema/entertainbot/internal/adapters/memory/chroma"
	"github.com/bnema/entertainbot/internal/adapters/openlibrary"
	"github.com/bnema/entertainbot/internal/adapters/openrouter"
	"github.com/bnema/entertainbot/internal/adapters/sessions"
	"github.com/bnema/entertainbot/internal/adapters/tvmaze"
	"github.com/bnema/entertainbot/internal/application"
	"github.com/bnema/entertainbot/internal/config"
	"github.com/bnema/entertainbot/internal/domain"
	"github.com/bnema/entertainbot/internal/ports"
)

type app struct {
	cfg    config.Config
	logger *slog.Logger

	anime    *jikan.Client
	tv       *tvmaze.Client
	books    *openlibrary.Client
	store    *sessions.Store
	memory   ports.ContextStore
	recorder ports.ConversationRecorder
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	anime, err := newSourceClient("jikan", cfg.Jikan, logger)
	if err != nil {
		return nil, err
	}
	tv, err := newSourceClient("tvmaze", cfg.TVMaze, logger)
	if err != nil {
		return nil, err
	}
	books, err := newSourceClient("openlibrary", cfg.OpenLibrary, logger)
	if err != nil {
		return nil, err
	}

	var memory ports.ContextStore = chroma.NopStore{}
	if cfg.Memory.URL != "" {
		memory, err = chroma.NewStore(chroma.Config{
			BaseURL:    cfg.Memory.URL,
			Collection: cfg.Memory.Collection,
			MaxResults: cfg.Memory.MaxResults,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("wire conversation memory: %w", err)
		}
	}

	recorder, err := convlog.NewRecorder(cfg.LogDir)
	if err != nil {
		return nil, fmt.Errorf("wire conversation log: %w", err)
	}

	store := sessions.NewStore(sessions.Config{
		SystemPrompt: domain.SystemPrompt,
		MaxHistory:   cfg.Sessions.MaxHistory,
		TTL:          cfg.Sessions.TTL,
		Logger:       logger,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		anime:    jikan.NewClient(anime),
		tv:       tvmaze.NewClient(tv),
		books:    openlibrary.NewClient(books),
		store:    store,
		memory:   memory,
		recorder: recorder,
	}, nil
}

// newOrchestrator wires the conversation pipeline. Deferred past wireApp so
// commands that never talk to the model work without an API key.
func (a *app) newOrchestrator() (*application.Orchestrator, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := openrouter.NewClient(openrouter.Config{
		APIKey:      a.cfg.OpenRouter.APIKey,
		Model:       a.cfg.OpenRouter.Model,
		BaseURL:     a.cfg.OpenRouter.BaseURL,
		Timeout:     a.cfg.OpenRouter.Timeout,
		MaxAttempts: a.cfg.OpenRouter.MaxAttempts,
		Logger:      a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire model client: %w", err)
	}

	router := application.NewToolRouter(a.anime, a.tv, a.books, a.logger)
	return application.NewOrchestrator(
		a.store, model, router, a.memory, a.recorder, a.logger, ports.SystemClock{},
	), nil
}

func newSourceClient(name string, src config.Source, logger *slog.Logger) (*fetch.Client, error) {
	client, err := fetch.NewClient(fetch.Config{
		Name:         name,
		BaseURL:      src.BaseURL,
		MinInterval:  src.MinInterval,
		Timeout:      src.Timeout,
		MaxAttempts:  src.MaxAttempts,
		CacheTTL:     src.CacheTTL,
		CacheMaxSize: src.CacheMaxSize,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("wire %s client: %w", name, err)
	}
	return client, nil
}

func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}
