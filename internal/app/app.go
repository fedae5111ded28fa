package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"InfluencerOps/internal/bot"
	"InfluencerOps/internal/config"
	"InfluencerOps/internal/contracts"
	"InfluencerOps/internal/extract"
	"InfluencerOps/internal/infrastructure/billing"
	"InfluencerOps/internal/infrastructure/filestore"
	"InfluencerOps/internal/infrastructure/llm"
	"InfluencerOps/internal/infrastructure/scheduler"
	"InfluencerOps/internal/infrastructure/telegram"
	"InfluencerOps/internal/intent"
	"InfluencerOps/internal/logging"
	"InfluencerOps/internal/payments"
	"InfluencerOps/internal/server"
	"InfluencerOps/internal/warehouse"
)

// App assembles the service from its parts and owns their lifecycle.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *warehouse.Store
	sched  *scheduler.CronScheduler
	srv    *server.Server
	pay    *payments.Service
}

// New wires every component from configuration.
func New(cfg *config.Config) (*App, error) {
	logger := logging.New(cfg.Logging.Level)

	store, err := warehouse.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	completer := llm.NewClient(cfg.OpenAI)
	resolver := extract.NewResolver(llm.NewClientWithModel(cfg.OpenAI, cfg.OpenAI.ResolverModel))
	pipeline := extract.NewPipeline(completer, resolver, logger)

	classifier := intent.NewClassifier(completer, logger)
	messenger := telegram.NewClient(cfg.Telegram.BotToken)
	chatBot := bot.New(messenger, pipeline, classifier, store, logger)

	fetcher := filestore.NewFetcher(nil, "")
	intake := contracts.NewService(fetcher, completer, store, cfg.Contracts.DestinationURL, nil, logger)

	gateway := billing.NewMockGateway(logger)
	pay := payments.NewService(store, gateway, logger, cfg.Payments.BatchSize)

	sched := scheduler.NewCronScheduler(cfg.Payments.CronExpression, cfg.Payments.Location())
	health := server.Health{
		Telegram: cfg.Telegram.BotToken != "",
		OpenAI:   cfg.OpenAI.APIKey != "",
		Database: cfg.Database.Path != "",
	}
	srv := server.New(cfg.Server.Port, logger, health, chatBot, intake, pay)

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		sched:  sched,
		srv:    srv,
		pay:    pay,
	}, nil
}

// Run starts the payment schedule and serves HTTP until the listener fails
// or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	err := a.sched.Start(ctx, func(at time.Time) {
		a.logger.Info("payment schedule fired", "at", at)
		if _, err := a.pay.Run(ctx, payments.ActionScan); err != nil {
			a.logger.Error("scheduled contract scan failed", "error", err)
		}
		if _, err := a.pay.Run(ctx, payments.ActionProcess); err != nil {
			a.logger.Error("scheduled payment processing failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("start schedule: %w", err)
	}

	return a.srv.Start(ctx)
}

// Close releases held resources.
func (a *App) Close() error {
	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.sched.Stop(stopCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	return a.store.Close()
}
