package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/memory"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/project"
	"github.com/sells-group/prospect-cli/internal/registry"
	"github.com/sells-group/prospect-cli/internal/store"
	anthropicpkg "github.com/sells-group/prospect-cli/pkg/anthropic"
	"github.com/sells-group/prospect-cli/pkg/chroma"
)

// appEnv holds the initialized store, clients, and services shared by the
// research/iterate/serve commands.
type appEnv struct {
	Store       store.Store
	Pipeline    *pipeline.Pipeline
	Workspace   *project.Workspace
	Accumulator *project.Accumulator
	Comparator  *project.Comparator
	Verticals   *model.VerticalRegistry
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "prospect.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store, API clients, vertical registry, pipeline, and
// workspace services. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var aiOpts []anthropicpkg.Option
	if cfg.Anthropic.RPS > 0 {
		aiOpts = append(aiOpts, anthropicpkg.WithLimiter(rate.NewLimiter(rate.Limit(cfg.Anthropic.RPS), 1)))
	}
	aiClient := anthropicpkg.NewClient(cfg.Anthropic.Key, aiOpts...)

	// Memory capture is optional; the pipeline runs without it.
	var capture memory.Capturer
	if cfg.Chroma.BaseURL != "" {
		chromaClient := chroma.NewClient(chroma.WithBaseURL(cfg.Chroma.BaseURL), chroma.WithTenant(cfg.Chroma.Tenant))
		capture = memory.NewCapture(chromaClient)
	} else {
		zap.L().Debug("chroma base URL not set, memory capture disabled")
	}

	verticals, err := loadVerticals()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	pipe := pipeline.New(cfg, st, aiClient, capture, verticals)
	acc := project.NewAccumulator(st, cfg.Pipeline)

	return &appEnv{
		Store:       st,
		Pipeline:    pipe,
		Workspace:   project.NewWorkspace(st, acc, pipe),
		Accumulator: acc,
		Comparator:  project.NewComparator(st),
		Verticals:   verticals,
	}, nil
}

func loadVerticals() (*model.VerticalRegistry, error) {
	if cfg.Pipeline.VerticalsPath != "" {
		reg, err := registry.LoadVerticals(cfg.Pipeline.VerticalsPath)
		if err != nil {
			return nil, err
		}
		zap.L().Info("verticals loaded", zap.String("path", cfg.Pipeline.VerticalsPath), zap.Int("count", len(reg.Defs())))
		return reg, nil
	}
	return registry.Default(), nil
}
