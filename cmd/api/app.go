package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kaushick2000/cookmate-backend/internal/api"
	"github.com/kaushick2000/cookmate-backend/internal/api/handlers/health"
	aiservice "github.com/kaushick2000/cookmate-backend/internal/core/ai/service"
	"github.com/kaushick2000/cookmate-backend/internal/core/recommendation"
	"github.com/kaushick2000/cookmate-backend/internal/core/shopping"
	"github.com/kaushick2000/cookmate-backend/internal/core/substitution"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/config"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/database"
	"github.com/kaushick2000/cookmate-backend/internal/infrastructure/metrics"
	"github.com/kaushick2000/cookmate-backend/internal/pkg/common"
)

// app 組裝完成的服務
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	store    *database.Store
	ai       *aiservice.Service
	metrics  *metrics.Metrics
	resolver *substitution.Resolver
	builder  *shopping.Builder
	engine   *recommendation.Engine
}

// newResolver 依 AI 服務是否可用建立替代建議服務
func newResolver(cfg *config.Config, ai *aiservice.Service) *substitution.Resolver {
	opts := []substitution.Option{substitution.WithConcurrency(cfg.AI.BatchConcurrency)}
	if ai != nil {
		opts = append(opts, substitution.WithSuggester(ai, cfg.AI.Timeout))
	}
	return substitution.NewResolver(opts...)
}

// newApp 初始化資料庫、AI 服務與核心服務
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	db, err := database.Open(cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}

	aiSvc, err := aiservice.NewService(ctx, cfg, m)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	store := database.NewStore(db)
	a := &app{
		cfg:      cfg,
		db:       db,
		store:    store,
		ai:       aiSvc,
		metrics:  m,
		resolver: newResolver(cfg, aiSvc),
		builder:  shopping.NewBuilder(store, store),
		engine:   recommendation.NewEngine(store, store.Views(), store.Favorites()),
	}

	common.LogInfo("服務已初始化",
		zap.String("database", cfg.Database.Driver),
		zap.String("ai_provider", a.aiProvider()),
		zap.Bool("cache", cfg.Cache.Enabled),
	)
	return a, nil
}

func (a *app) aiProvider() string {
	if a.ai == nil {
		return config.ProviderNone
	}
	return a.ai.ProviderName()
}

// dependencies 路由需要的服務與依賴檢查
func (a *app) dependencies() api.Dependencies {
	return api.Dependencies{
		Config:     a.cfg,
		Builder:    a.builder,
		Resolver:   a.resolver,
		Engine:     a.engine,
		Activity:   a.store,
		Metrics:    a.metrics,
		AIProvider: a.aiProvider(),
		Checks: map[string]health.Check{
			"database": func(ctx context.Context) error {
				sqlDB, err := a.db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
	}
}

// Close 釋放所有資源
func (a *app) Close() error {
	var errs []error
	if a.ai != nil {
		errs = append(errs, a.ai.Close())
	}
	errs = append(errs, database.Close(a.db))
	return errors.Join(errs...)
}
