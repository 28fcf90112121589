package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const defaultTimeout = 30 * time.Second

// Report is the merged outcome of one fan-out.
type Report struct {
	// Items are aggregated in adapter completion order.
	Items []domain.Item
	// Results holds one entry per adapter, in completion order.
	Results []domain.FetchResult
}

// Failed returns the results that carry an error.
func (r Report) Failed() []domain.FetchResult {
	var out []domain.FetchResult
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Orchestrator runs every adapter concurrently and isolates their failures.
type Orchestrator struct {
	timeout  time.Duration
	logger   *slog.Logger
	recorder ports.FetchRecorder
}

// NewOrchestrator builds an orchestrator with a per-adapter timeout.
func NewOrchestrator(timeout time.Duration, logger *slog.Logger, recorder ports.FetchRecorder) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{timeout: timeout, logger: logger, recorder: recorder}
}

// FetchAll invokes every adapter and returns once each has completed or timed out.
// Adapter failures never fail the call; only an empty adapter set does.
func (o *Orchestrator) FetchAll(ctx context.Context, adapters []ports.SourceAdapter) (Report, error) {
	if len(adapters) == 0 {
		return Report{}, fmt.Errorf("%w: no adapters configured", domain.ErrConfiguration)
	}

	done := make(chan domain.FetchResult, len(adapters))
	var g errgroup.Group
	for _, adapter := range adapters {
		adapter := adapter
		g.Go(func() error {
			done <- o.fetchOne(ctx, adapter)
			return nil
		})
	}

	report := Report{Results: make([]domain.FetchResult, 0, len(adapters))}
	for range adapters {
		res := <-done
		report.Results = append(report.Results, res)
		report.Items = append(report.Items, res.Items...)
	}
	_ = g.Wait()

	o.logger.Info("fetch complete",
		"adapters", len(adapters),
		"failed", len(report.Failed()),
		"items", len(report.Items),
	)
	return report, nil
}

type outcome struct {
	items []domain.Item
	err   error
}

func (o *Orchestrator) fetchOne(ctx context.Context, adapter ports.SourceAdapter) domain.FetchResult {
	name := adapter.Name()
	start := time.Now()

	actx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// Buffered so an adapter that ignores cancellation can finish later without blocking.
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		items, err := adapter.Fetch(actx)
		ch <- outcome{items: items, err: err}
	}()

	var res outcome
	select {
	case res = <-ch:
	case <-actx.Done():
		res = outcome{err: actx.Err()}
	}

	result := domain.FetchResult{Adapter: name, Elapsed: time.Since(start)}
	if res.err != nil {
		if errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			result.Err = fmt.Errorf("%w: %s: %w after %s", domain.ErrAdapter, name, domain.ErrAdapterTimeout, o.timeout)
		} else {
			result.Err = fmt.Errorf("%w: %s: %w", domain.ErrAdapter, name, res.err)
		}
		o.logger.Warn("adapter failed",
			"adapter", name,
			"elapsed", result.Elapsed,
			"error", result.Err,
		)
		o.observe(result)
		return result
	}

	result.Items = o.validItems(name, res.items)
	o.logger.Info("adapter fetched",
		"adapter", name,
		"items", len(result.Items),
		"dropped", len(res.items)-len(result.Items),
		"elapsed", result.Elapsed,
	)
	o.observe(result)
	return result
}

func (o *Orchestrator) validItems(adapter string, items []domain.Item) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.Source == "" {
			item.Source = adapter
		}
		if err := item.Validate(); err != nil {
			o.logger.Debug("drop invalid item", "adapter", adapter, "error", err)
			continue
		}
		out = append(out, item)
	}
	return out
}

func (o *Orchestrator) observe(res domain.FetchResult) {
	if o.recorder != nil {
		o.recorder.ObserveFetch(res.Adapter, len(res.Items), res.Err, res.Elapsed)
	}
}
