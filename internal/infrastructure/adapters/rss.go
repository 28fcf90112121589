package adapters

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/httpclient"
	"NewsDigest/internal/ports"
)

// RSS reads RSS, Atom and JSON feeds from a list of URLs.
type RSS struct {
	name   string
	label  string
	limit  int
	urls   []string
	client *httpclient.Client
	logger *slog.Logger
}

var _ ports.SourceAdapter = (*RSS)(nil)

// NewRSS requires at least one feed url. The limit applies per feed.
func NewRSS(cfg config.AdapterConfig, client *httpclient.Client, logger *slog.Logger) (*RSS, error) {
	urls := make([]string, 0, len(cfg.URLs))
	for _, u := range cfg.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, errors.New("rss: at least one feed url is required")
	}
	return &RSS{
		name:   cfg.Name,
		label:  strings.TrimSpace(cfg.Label),
		limit:  cfg.Limit(),
		urls:   urls,
		client: client,
		logger: orDiscard(logger),
	}, nil
}

func (r *RSS) Name() string { return r.name }

// Fetch skips feeds that fail and reports an error only when every feed did.
func (r *RSS) Fetch(ctx context.Context) ([]domain.Item, error) {
	parser := gofeed.NewParser()

	var (
		items []domain.Item
		errs  []error
	)
	for _, feedURL := range r.urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		feedItems, err := r.fetchFeed(ctx, parser, feedURL)
		if err != nil {
			r.logger.Warn("feed failed", "url", feedURL, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", feedURL, err))
			continue
		}
		r.logger.Debug("feed parsed", "url", feedURL, "items", len(feedItems))
		items = append(items, feedItems...)
	}
	if len(errs) == len(r.urls) {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (r *RSS) fetchFeed(ctx context.Context, parser *gofeed.Parser, feedURL string) ([]domain.Item, error) {
	body, err := r.client.Get(ctx, feedURL, map[string]string{
		"Accept": "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8",
	})
	if err != nil {
		return nil, err
	}
	feed, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	source := r.sourceLabel(feed, feedURL)
	items := make([]domain.Item, 0, r.limit)
	for _, entry := range feed.Items {
		if len(items) >= r.limit {
			break
		}
		if entry == nil || strings.TrimSpace(entry.Title) == "" || strings.TrimSpace(entry.Link) == "" {
			continue
		}
		item := domain.Item{
			Title:    collapseSpace(entry.Title),
			URL:      strings.TrimSpace(entry.Link),
			Summary:  htmlToText(firstNonEmpty(entry.Description, entry.Content)),
			Source:   source,
			Keywords: entry.Categories,
		}
		switch {
		case entry.PublishedParsed != nil:
			item.PublishedAt = domain.TimePtr(entry.PublishedParsed.UTC())
		case entry.UpdatedParsed != nil:
			item.PublishedAt = domain.TimePtr(entry.UpdatedParsed.UTC())
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *RSS) sourceLabel(feed *gofeed.Feed, feedURL string) string {
	if r.label != "" {
		return r.label
	}
	title := strings.TrimSpace(feed.Title)
	if title == "" {
		if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
			title = u.Host
		} else {
			title = "RSS Feed"
		}
	}
	return title + " (RSS)"
}
