package app

import (
	"context"
	"log/slog"

	"NewsDigest/internal/config"
	"NewsDigest/internal/infrastructure/adapters"
	"NewsDigest/internal/infrastructure/metrics"
	"NewsDigest/internal/infrastructure/output"
	"NewsDigest/internal/infrastructure/telegram"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/source"
	"NewsDigest/internal/usecase"
)

// Application wires configs to the digest agent.
type Application struct {
	cfg   config.Config
	agent *usecase.Agent
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}

	registry := source.NewRegistry()
	adapters.Register(registry)

	var notifier ports.Notifier
	if cfg.Output.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Output.Telegram.BotToken, cfg.Output.Telegram.ChatID)
	}

	agent := usecase.NewAgent(cfg, usecase.AgentDeps{
		Registry: registry,
		Writer:   output.NewFileWriter(cfg.Output.Path),
		Notifier: notifier,
		Metrics:  metrics.NewRecorder(),
		Logger:   baseLogger,
	})
	return &Application{cfg: cfg, agent: agent}
}

// Run performs a single digest run and returns the rendered document.
func (a *Application) Run(ctx context.Context) (string, error) {
	return a.agent.Run(ctx)
}
