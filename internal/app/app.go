// Package app wires configuration, stores, the model gateway and the HTTP
// surface into one runnable unit.
package app

import (
	"context"
	"fmt"
	"log"

	"cadpilot/internal/artifact"
	"cadpilot/internal/broker"
	"cadpilot/internal/cad"
	"cadpilot/internal/config"
	"cadpilot/internal/intent"
	"cadpilot/internal/llmclient"
	"cadpilot/internal/model"
	"cadpilot/internal/server"
	"cadpilot/internal/store"
)

type App struct {
	srv       *server.Server
	snapshots *store.Store
	llm       llmclient.Client
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("app: load config: %w", err)
	}

	registry := model.NewRegistry()
	// The trace engine is the default capability backend: every call is
	// recorded as an auditable line. A real CAD bridge slots in behind the
	// same interface.
	engine := cad.NewTraceEngine()

	snapshots := store.NewFromEnv(cfg.Snapshot.Path)

	var artifacts artifact.Store
	if cfg.Artifact.Enabled {
		s3, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.Artifact.Endpoint,
			Region:    cfg.Artifact.Region,
			AccessKey: cfg.Artifact.AccessKey,
			SecretKey: cfg.Artifact.SecretKey,
			Bucket:    cfg.Artifact.Bucket,
			UseSSL:    cfg.Artifact.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("app: init artifact store: %w", err)
		}
		artifacts = s3
	} else {
		artifacts = artifact.NewMemoryStore()
	}

	b := broker.New(engine, registry,
		broker.WithSnapshots(snapshots),
		broker.WithArtifacts(artifacts),
		broker.WithHistorySize(cfg.Session.PreviewHistory),
	)

	var (
		llm        llmclient.Client
		translator server.Translator
	)
	switch cfg.LLM.Provider {
	case "fake":
		log.Printf("LLM provider is fake, session accepts schemas only")
	default:
		gemini, err := llmclient.NewGeminiClient(context.Background(), cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("app: init llm client: %w", err)
		}
		llm = gemini
		tr, err := llmclient.NewTranslator(gemini)
		if err != nil {
			return nil, fmt.Errorf("app: init translator: %w", err)
		}
		translator = tr
	}

	sess := intent.NewSession(cfg.Session.DefaultUnit, cfg.Session.ConfidenceThreshold, 0)
	svc := server.NewSessionService(translator, intent.NewResolver(registry), b, sess)

	mux := server.NewMux(server.NewSessionHandler(svc), server.NewExportHandler(artifacts))
	return &App{
		srv:       server.New(cfg.Port, mux),
		snapshots: snapshots,
		llm:       llm,
	}, nil
}

func (a *App) Start() error {
	return a.srv.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.llm != nil {
		_ = a.llm.Close()
	}
	if err := a.snapshots.Close(); err != nil {
		log.Printf("snapshot store close failed: %v", err)
	}
	return a.srv.Shutdown(ctx)
}
