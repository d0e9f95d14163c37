package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/joelkehle/claim-advocate/internal/cache"
	"github.com/joelkehle/claim-advocate/internal/casestore"
	"github.com/joelkehle/claim-advocate/internal/config"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
	"github.com/joelkehle/claim-advocate/internal/letter"
	"github.com/joelkehle/claim-advocate/internal/metrics"
	"github.com/joelkehle/claim-advocate/internal/service"
	"github.com/joelkehle/claim-advocate/internal/telemetry"
)

// app is the fully wired process: knowledge base, store, cache, drafter
// and the service on top of them.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	holder    *knowledge.Holder
	metrics   *metrics.Metrics
	store     casestore.Store
	redis     *redis.Client
	svc       *service.Service
	telemetry telemetry.ShutdownFunc
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	kb := knowledge.Default()
	if cfg.Knowledge.Path != "" {
		loaded, err := knowledge.Load(cfg.Knowledge.Path)
		if err != nil {
			return nil, fmt.Errorf("knowledge base %s: %w", cfg.Knowledge.Path, err)
		}
		kb = loaded
	}
	a.holder = knowledge.NewHolder(kb)
	log.Info("knowledge base loaded", zap.String("version", kb.Version), zap.Int("references", len(kb.References)))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(reg)

	shutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, err
	}
	a.telemetry = shutdown

	store, err := openStore(cfg.Store)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.store = store

	var analysisCache cache.AnalysisCache
	if cfg.Cache.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		analysisCache = cache.NewRedisCache(a.redis, cache.WithTTL(cfg.Cache.TTL))
		if err := analysisCache.Ping(ctx); err != nil {
			log.Warn("analysis cache unreachable; continuing without hits", zap.Error(err))
		}
	}

	template := letter.NewTemplateDrafter()
	var drafter letter.Drafter = template
	if caller, err := letter.NewAnthropicCallerFromEnv(cfg.Letter.Model, cfg.Letter.MaxTokens); err == nil {
		drafter = letter.NewLLMDrafter(caller, template, log)
	} else {
		log.Info("letters use the template drafter", zap.String("reason", err.Error()))
	}

	svc, err := service.New(service.Deps{
		Store:     a.store,
		Knowledge: a.holder,
		Cache:     analysisCache,
		Drafter:   drafter,
		PDF:       letter.NewChromiumPDFRenderer(cfg.Letter.ChromePath),
		Metrics:   a.metrics,
		Log:       log,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.svc = svc
	return a, nil
}

func openStore(cfg config.StoreConfig) (casestore.Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	switch cfg.Driver {
	case "file":
		return casestore.NewFileStore(cfg.Path)
	default:
		return casestore.NewSQLiteStore(cfg.Path)
	}
}

func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.telemetry != nil {
		errs = append(errs, a.telemetry(ctx))
	}
	return errors.Join(errs...)
}

// watchKnowledge hot-reloads the knowledge file until ctx ends.
func (a *app) watchKnowledge(ctx context.Context) {
	if !a.cfg.Knowledge.Watch || a.cfg.Knowledge.Path == "" {
		return
	}
	w := knowledge.NewWatcher(a.cfg.Knowledge.Path, a.holder, a.log, func(_ *knowledge.Base, err error) {
		a.metrics.ObserveReload(err)
	})
	go func() {
		if err := w.Run(ctx); err != nil {
			a.log.Error("knowledge watcher stopped", zap.Error(err))
		}
	}()
}
