package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsDigest/internal/config"
	"NewsDigest/internal/digest"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/fetch"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/source"
)

// Pipeline stage names reported to the metrics sink.
const (
	StageFetched  = "fetched"
	StageDeduped  = "deduped"
	StageFiltered = "filtered"
	StageRanked   = "ranked"
)

// AgentDeps wires all driven adapters into the digest run.
type AgentDeps struct {
	Registry *source.Registry
	Writer   ports.DigestWriter
	Notifier ports.Notifier
	Metrics  ports.MetricsSink
	Logger   *slog.Logger
	// NewClient overrides how the run-scoped HTTP client is created.
	NewClient func(config.FetchConfig) *httpclient.Client
	Now       func() time.Time
}

// Agent runs one fetch, dedupe, filter, rank and render cycle.
type Agent struct {
	cfg       config.Config
	registry  *source.Registry
	writer    ports.DigestWriter
	notifier  ports.Notifier
	metrics   ports.MetricsSink
	logger    *slog.Logger
	newClient func(config.FetchConfig) *httpclient.Client
	now       func() time.Time
}

// NewAgent constructs the facade. cfg is validated on every Run.
func NewAgent(cfg config.Config, deps AgentDeps) *Agent {
	a := &Agent{
		cfg:       cfg,
		registry:  deps.Registry,
		writer:    deps.Writer,
		notifier:  deps.Notifier,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		newClient: deps.NewClient,
		now:       deps.Now,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.newClient == nil {
		a.newClient = defaultClient
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

func defaultClient(cfg config.FetchConfig) *httpclient.Client {
	return httpclient.New(httpclient.Config{
		Timeout:   cfg.RequestTimeout,
		Retries:   cfg.RetryCount(),
		Backoff:   cfg.Backoff,
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
	})
}

// Run produces the digest and writes it to the configured output.
// Only configuration and render failures are returned; adapter failures are logged and recorded.
func (a *Agent) Run(ctx context.Context) (string, error) {
	log := a.logger.With("component", "agent", "run_id", uuid.NewString())

	if err := a.cfg.Validate(); err != nil {
		return "", err
	}
	if a.registry == nil || a.writer == nil {
		return "", fmt.Errorf("%w: agent is missing registry or writer", domain.ErrConfiguration)
	}

	client := a.newClient(a.cfg.Fetch)
	defer func() {
		_ = client.Close()
		log.Debug("http client released")
	}()

	adapters, err := a.registry.Build(a.cfg.EnabledAdapters(), source.Deps{HTTP: client, Logger: log})
	if err != nil {
		return "", err
	}
	log.Info("run started", "adapters", len(adapters))

	var recorder ports.FetchRecorder
	if a.metrics != nil {
		recorder = a.metrics
	}
	report, err := fetch.NewOrchestrator(a.cfg.Fetch.Timeout, log.With("component", "fetch"), recorder).FetchAll(ctx, adapters)
	if err != nil {
		return "", err
	}
	a.stage(StageFetched, len(report.Items))

	items := digest.Dedupe(report.Items)
	a.stage(StageDeduped, len(items))

	items = digest.Filter(items, a.cfg.Filters.Include, a.cfg.Filters.Exclude)
	a.stage(StageFiltered, len(items))

	items = digest.NewRanker(categoryRules(a.cfg.Categories)).Rank(items)
	a.stage(StageRanked, len(items))

	doc := digest.NewRenderer(digest.RenderOptions{SummaryLength: a.cfg.Digest.SummaryLength}).
		Render(items, digest.Meta{Title: a.cfg.Digest.Title, GeneratedAt: a.now()})

	if err := a.writer.WriteDigest(ctx, doc); err != nil {
		if !errors.Is(err, domain.ErrRender) {
			err = fmt.Errorf("%w: %w", domain.ErrRender, err)
		}
		return "", fmt.Errorf("write digest: %w", err)
	}

	if a.notifier != nil {
		if err := a.notifier.PublishDigest(ctx, doc); err != nil {
			log.Warn("notify failed", "error", err)
		}
	}
	if a.metrics != nil && a.cfg.Output.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.cfg.Output.MetricsFile); err != nil {
			log.Warn("metrics export failed", "path", a.cfg.Output.MetricsFile, "error", err)
		}
	}

	log.Info("run finished",
		"fetched", len(report.Items),
		"items", len(items),
		"failed_adapters", len(report.Failed()),
	)
	return doc, nil
}

func (a *Agent) stage(name string, n int) {
	if a.metrics != nil {
		a.metrics.ObserveStage(name, n)
	}
}

func categoryRules(cfg []config.CategoryRule) []digest.CategoryRule {
	rules := make([]digest.CategoryRule, 0, len(cfg))
	for _, r := range cfg {
		rules = append(rules, digest.CategoryRule{Match: r.Match, Category: r.Category})
	}
	return rules
}
